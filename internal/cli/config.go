package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/ordering"
)

// Config is the orderctl configuration file layout:
//
//	log_level: info
//	database: orderctl.db
//	ordering:
//	  primary_key: id
//	  order_key: order
//	  clamp_range: false
//	  allow_orders_out_of_range: false
//	  insert_after_only: false
//	  refresh_sequence: false
type Config struct {
	LogLevel string          `mapstructure:"log_level" yaml:"log_level"`
	Database string          `mapstructure:"database" yaml:"database"`
	Ordering ordering.Config `mapstructure:"ordering" yaml:"ordering"`
}

const DefaultDatabase = "orderctl.db"

func setDefaults(v *viper.Viper) {
	def := ordering.DefaultConfig()
	v.SetDefault("log_level", "warn")
	v.SetDefault("database", DefaultDatabase)
	v.SetDefault("ordering.primary_key", def.PrimaryKey)
	v.SetDefault("ordering.order_key", def.OrderKey)
	v.SetDefault("ordering.allow_orders_out_of_range", def.AllowOrdersOutOfRange)
	v.SetDefault("ordering.clamp_range", def.ClampRange)
	v.SetDefault("ordering.insert_after_only", def.InsertAfterOnly)
	v.SetDefault("ordering.refresh_sequence", def.RefreshSequence)
}

// loadConfig reads path when it exists, then environment variables prefixed
// with ORDERCTL_ (ORDERCTL_ORDERING_CLAMP_RANGE=true).
func loadConfig(v *viper.Viper, path string) (Config, error) {
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" && fileExists(path) {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if cfg.Ordering.PrimaryKey == "" {
		cfg.Ordering.PrimaryKey = ordering.DefaultPrimaryKey
	}
	if cfg.Ordering.OrderKey == "" {
		cfg.Ordering.OrderKey = ordering.DefaultOrderKey
	}
	return cfg, nil
}
