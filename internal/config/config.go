// Package config loads the daemon configuration with precedence
// environment > file > defaults, mirroring how the admission policy is
// meant to be pinned down once at startup.
package config

import (
	"fmt"
	"time"

	"github.com/betti-labs/betti/internal/balancer"
)

// AppConfig is the full configuration surface of the daemon.
type AppConfig struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`
	// LogLevel sets the zerolog level ("debug", "info", ...).
	LogLevel string `yaml:"log_level"`

	// Admission policy.
	MaxParallelHeavy  int           `yaml:"max_parallel_heavy"`
	MaxParallelMedium int           `yaml:"max_parallel_medium"`
	CooldownHeavy     time.Duration `yaml:"cooldown_heavy"`
	CooldownMedium    time.Duration `yaml:"cooldown_medium"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	// RecoveryFactor is accepted for compatibility; no decision path
	// reads it.
	RecoveryFactor float64 `yaml:"recovery_factor"`

	// Request limiter for the data-plane routes.
	GlobalRate  float64       `yaml:"global_rate"`
	GlobalBurst int           `yaml:"global_burst"`
	PerIPRate   float64       `yaml:"per_ip_rate"`
	PerIPBurst  int           `yaml:"per_ip_burst"`
	IPCleanup   time.Duration `yaml:"ip_cleanup"`
}

// Defaults returns the stock configuration.
func Defaults() AppConfig {
	bc := balancer.DefaultConfig()
	return AppConfig{
		Listen:            ":8080",
		LogLevel:          "info",
		MaxParallelHeavy:  bc.MaxParallelHeavy,
		MaxParallelMedium: bc.MaxParallelMedium,
		CooldownHeavy:     bc.CooldownHeavy,
		CooldownMedium:    bc.CooldownMedium,
		PollInterval:      bc.PollInterval,
		RecoveryFactor:    bc.RecoveryFactor,
		GlobalRate:        100,
		GlobalBurst:       200,
		PerIPRate:         10,
		PerIPBurst:        20,
		IPCleanup:         5 * time.Minute,
	}
}

// BalancerConfig projects the admission policy fields.
func (c AppConfig) BalancerConfig() balancer.Config {
	return balancer.Config{
		MaxParallelHeavy:  c.MaxParallelHeavy,
		MaxParallelMedium: c.MaxParallelMedium,
		CooldownHeavy:     c.CooldownHeavy,
		CooldownMedium:    c.CooldownMedium,
		PollInterval:      c.PollInterval,
		RecoveryFactor:    c.RecoveryFactor,
	}
}

// Validate rejects configurations that must not reach runtime.
func (c AppConfig) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("config: listen address must not be empty")
	}
	if err := c.BalancerConfig().Validate(); err != nil {
		return err
	}
	if c.GlobalRate <= 0 || c.PerIPRate <= 0 {
		return fmt.Errorf("config: request rates must be positive")
	}
	if c.GlobalBurst <= 0 || c.PerIPBurst <= 0 {
		return fmt.Errorf("config: request bursts must be positive")
	}
	return nil
}
