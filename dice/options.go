package dice

import (
	"time"

	"go.uber.org/zap"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat/tcd22xx"
)

// Config holds the device handle configuration.
type Config struct {
	// Timeout applies to every register transaction.
	Timeout time.Duration

	// Logger is used for operational logging (optional).
	Logger *zap.Logger

	// Spec is the routing topology of the model (optional). Routing
	// operations require it.
	Spec *tcd22xx.Spec

	// GlobalSpec adjusts decode of the global section for models with
	// broken capability registers.
	GlobalSpec tcat.GlobalSpecification
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Timeout: 200 * time.Millisecond,
		Logger:  zap.NewNop(),
	}
}

// Option is a functional option for configuring the Device.
type Option func(*Config)

// WithTimeout sets the timeout for register transactions.
//
// Example:
//
//	dev := dice.New(transport, dice.WithTimeout(time.Second))
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithLogger sets a logger for device operations.
//
// Example:
//
//	dev := dice.New(transport, dice.WithLogger(logger))
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithSpec sets the routing topology of the model. The topology's clock
// source override, when present, also adjusts global section decode.
//
// Example:
//
//	spec, _ := tcd22xx.ModelSpec("spro26")
//	dev := dice.New(transport, dice.WithSpec(spec))
func WithSpec(spec *tcd22xx.Spec) Option {
	return func(c *Config) {
		c.Spec = spec
		if spec != nil && spec.AvailableSourceOverride != nil {
			c.GlobalSpec.AvailableClockSourceOverride = spec.AvailableSourceOverride
		}
	}
}

// WithGlobalSpecification adjusts decode of the global section.
func WithGlobalSpecification(spec tcat.GlobalSpecification) Option {
	return func(c *Config) {
		c.GlobalSpec = spec
	}
}
