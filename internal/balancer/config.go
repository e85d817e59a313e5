package balancer

import (
	"fmt"
	"time"
)

// Config holds the admission policy for a Balancer. It is read once at
// construction and never mutated afterwards; changing limits at runtime
// means building a new Balancer and swapping it at the composition root.
type Config struct {
	// MaxParallelHeavy caps concurrently running heavy tasks.
	MaxParallelHeavy int
	// MaxParallelMedium caps concurrently running medium tasks.
	MaxParallelMedium int

	// CooldownHeavy is the minimum interval between two heavy admissions.
	CooldownHeavy time.Duration
	// CooldownMedium is the minimum interval between two medium admissions.
	CooldownMedium time.Duration

	// PollInterval is how long the blocking policy sleeps between
	// failed admission attempts.
	PollInterval time.Duration

	// RecoveryFactor is carried from the observed configuration surface
	// but has no effect on any admission decision.
	RecoveryFactor float64
}

// DefaultConfig returns the stock admission policy.
func DefaultConfig() Config {
	return Config{
		MaxParallelHeavy:  6,
		MaxParallelMedium: 12,
		CooldownHeavy:     20 * time.Millisecond,
		CooldownMedium:    5 * time.Millisecond,
		PollInterval:      time.Millisecond,
		RecoveryFactor:    0.8,
	}
}

// Validate rejects configurations that would misbehave at runtime.
// Invalid values are a startup failure, never silently clamped.
func (c Config) Validate() error {
	if c.MaxParallelHeavy < 0 {
		return fmt.Errorf("balancer: maxParallelHeavy must be non-negative, got %d", c.MaxParallelHeavy)
	}
	if c.MaxParallelMedium < 0 {
		return fmt.Errorf("balancer: maxParallelMedium must be non-negative, got %d", c.MaxParallelMedium)
	}
	if c.CooldownHeavy < 0 {
		return fmt.Errorf("balancer: cooldownHeavy must be non-negative, got %v", c.CooldownHeavy)
	}
	if c.CooldownMedium < 0 {
		return fmt.Errorf("balancer: cooldownMedium must be non-negative, got %v", c.CooldownMedium)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("balancer: pollInterval must be positive, got %v", c.PollInterval)
	}
	return nil
}

// maxParallel returns the concurrency ceiling for a throttled class.
func (c Config) maxParallel(w Weight) int {
	switch w {
	case WeightHeavy:
		return c.MaxParallelHeavy
	case WeightMedium:
		return c.MaxParallelMedium
	default:
		return 0
	}
}

// cooldown returns the re-admission interval for a throttled class.
func (c Config) cooldown(w Weight) time.Duration {
	switch w {
	case WeightHeavy:
		return c.CooldownHeavy
	case WeightMedium:
		return c.CooldownMedium
	default:
		return 0
	}
}
