package ordering

const (
	DefaultPrimaryKey = "id"
	DefaultOrderKey   = "order"
)

// Config controls how an Engine validates, repairs and shifts order values.
type Config struct {
	// PrimaryKey and OrderKey name the fields used by RecordAccessor and
	// appear in error messages.
	PrimaryKey string `yaml:"primary_key" mapstructure:"primary_key" json:"primaryKey"`
	OrderKey   string `yaml:"order_key" mapstructure:"order_key" json:"orderKey"`

	// AllowOrdersOutOfRange accepts requested orders outside [min, max].
	AllowOrdersOutOfRange bool `yaml:"allow_orders_out_of_range" mapstructure:"allow_orders_out_of_range" json:"allowOrdersOutOfRange"`
	// ClampRange clamps requested orders into [min, max] instead of failing.
	ClampRange bool `yaml:"clamp_range" mapstructure:"clamp_range" json:"clampRange"`
	// InsertAfterOnly makes the repair pass append after the current maximum
	// instead of looking for the lowest free slot.
	InsertAfterOnly bool `yaml:"insert_after_only" mapstructure:"insert_after_only" json:"insertAfterOnly"`
	// RefreshSequence renumbers the result densely as 0..N-1.
	RefreshSequence bool `yaml:"refresh_sequence" mapstructure:"refresh_sequence" json:"refreshSequence"`
}

func DefaultConfig() Config {
	return Config{
		PrimaryKey: DefaultPrimaryKey,
		OrderKey:   DefaultOrderKey,
	}
}

func (c Config) withDefaults() Config {
	if c.PrimaryKey == "" {
		c.PrimaryKey = DefaultPrimaryKey
	}
	if c.OrderKey == "" {
		c.OrderKey = DefaultOrderKey
	}
	return c
}

// Option overrides engine configuration for a single call.
type Option func(*Config)

func WithAllowOrdersOutOfRange(allow bool) Option {
	return func(c *Config) { c.AllowOrdersOutOfRange = allow }
}

func WithClampRange(clamp bool) Option {
	return func(c *Config) { c.ClampRange = clamp }
}

func WithInsertAfterOnly(insertAfter bool) Option {
	return func(c *Config) { c.InsertAfterOnly = insertAfter }
}

func WithRefreshSequence(refresh bool) Option {
	return func(c *Config) { c.RefreshSequence = refresh }
}

func (c Config) apply(opts []Option) Config {
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}
