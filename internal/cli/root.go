// Package cli implements the orderctl command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	ConfigFileName      = ".orderctl"
	ConfigFileExtension = ".yaml"
	EnvPrefix           = "ORDERCTL"
)

// Exit codes.
const (
	exitSuccess  = 0
	exitFailure  = 1
	exitProblems = 2
)

// errProblemsFound marks a check that ran fine but found ordering problems.
var errProblemsFound = errors.New("ordering problems found")

// app holds state shared by all subcommands of one root command.
type app struct {
	v        *viper.Viper
	cfgFile  string
	logLevel string
	cfg      Config
	logger   *slog.Logger
}

// NewRootCmd creates the orderctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "orderctl",
		Short: "Validate, repair and reorder ordered collections",
		Long: `orderctl repairs missing and duplicate order values and applies reorder
requests to collections stored as JSON, YAML or MessagePack documents,
or to lists persisted in a SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", defaultConfigPath(), "config file (default is $HOME/.orderctl.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().String("primary-key", "", "primary key field of documents (default \"id\")")
	root.PersistentFlags().String("order-key", "", "order field of documents (default \"order\")")

	_ = a.v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("ordering.primary_key", root.PersistentFlags().Lookup("primary-key"))
	_ = a.v.BindPFlag("ordering.order_key", root.PersistentFlags().Lookup("order-key"))

	root.AddCommand(
		newReorderCmd(a),
		newMoveCmd(a),
		newCheckCmd(a),
		newListCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs orderctl and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errProblemsFound):
		return exitProblems
	default:
		fmt.Fprintf(root.ErrOrStderr(), "Error: %s\n", err)
		return exitFailure
	}
}

func defaultConfigPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ConfigFileName+ConfigFileExtension)
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	a.logger.Debug("configuration loaded", "config", a.v.ConfigFileUsed(), "ordering", fmt.Sprintf("%+v", cfg.Ordering))
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
