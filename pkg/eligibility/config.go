package eligibility

import (
	"fmt"
	"time"
)

// Config contains configuration for the eligibility engine.
type Config struct {
	// ConfidenceFloor is the minimum extraction confidence a fact needs
	// before it can support a met/not_met verdict. Facts below the floor
	// evaluate to insufficient evidence. Individual criteria may
	// override the floor in their parameters.
	// Default: 0.5.
	ConfidenceFloor float64

	// MaxConcurrency bounds how many criteria are evaluated in parallel
	// within one evaluation. Criterion evaluation is pure and
	// order-independent; results are reassembled in bundle order.
	// Default: 4.
	MaxConcurrency int

	// Clock supplies the evaluation reference date when the caller does
	// not pass an explicit as-of date. Overridable for tests.
	// Default: time.Now.
	Clock func() time.Time
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		ConfidenceFloor: 0.5,
		MaxConcurrency:  4,
		Clock:           time.Now,
	}
}

// Validate validates the engine configuration.
func (c *Config) Validate() error {
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1 {
		return fmt.Errorf("%w: confidence floor must be in [0, 1]", ErrInvalidConfig)
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("%w: max concurrency must be positive", ErrInvalidConfig)
	}
	if c.Clock == nil {
		return fmt.Errorf("%w: clock cannot be nil", ErrInvalidConfig)
	}
	return nil
}

// WithConfidenceFloor sets the engine-wide confidence floor.
func (c *Config) WithConfidenceFloor(floor float64) *Config {
	c.ConfidenceFloor = floor
	return c
}

// WithMaxConcurrency sets the per-evaluation concurrency bound.
func (c *Config) WithMaxConcurrency(n int) *Config {
	c.MaxConcurrency = n
	return c
}

// WithClock sets the reference-date clock.
func (c *Config) WithClock(clock func() time.Time) *Config {
	c.Clock = clock
	return c
}
