package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors AppConfig with pointer fields so only keys actually
// present in the file override the running defaults. Durations are Go
// duration strings ("20ms").
type fileConfig struct {
	Listen   *string `yaml:"listen"`
	LogLevel *string `yaml:"log_level"`

	MaxParallelHeavy  *int     `yaml:"max_parallel_heavy"`
	MaxParallelMedium *int     `yaml:"max_parallel_medium"`
	CooldownHeavy     *string  `yaml:"cooldown_heavy"`
	CooldownMedium    *string  `yaml:"cooldown_medium"`
	PollInterval      *string  `yaml:"poll_interval"`
	RecoveryFactor    *float64 `yaml:"recovery_factor"`

	GlobalRate  *float64 `yaml:"global_rate"`
	GlobalBurst *int     `yaml:"global_burst"`
	PerIPRate   *float64 `yaml:"per_ip_rate"`
	PerIPBurst  *int     `yaml:"per_ip_burst"`
	IPCleanup   *string  `yaml:"ip_cleanup"`
}

func applyFile(cfg *AppConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if fc.Listen != nil {
		cfg.Listen = *fc.Listen
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.MaxParallelHeavy != nil {
		cfg.MaxParallelHeavy = *fc.MaxParallelHeavy
	}
	if fc.MaxParallelMedium != nil {
		cfg.MaxParallelMedium = *fc.MaxParallelMedium
	}
	if err := applyFileDuration(&cfg.CooldownHeavy, fc.CooldownHeavy, path, "cooldown_heavy"); err != nil {
		return err
	}
	if err := applyFileDuration(&cfg.CooldownMedium, fc.CooldownMedium, path, "cooldown_medium"); err != nil {
		return err
	}
	if err := applyFileDuration(&cfg.PollInterval, fc.PollInterval, path, "poll_interval"); err != nil {
		return err
	}
	if fc.RecoveryFactor != nil {
		cfg.RecoveryFactor = *fc.RecoveryFactor
	}
	if fc.GlobalRate != nil {
		cfg.GlobalRate = *fc.GlobalRate
	}
	if fc.GlobalBurst != nil {
		cfg.GlobalBurst = *fc.GlobalBurst
	}
	if fc.PerIPRate != nil {
		cfg.PerIPRate = *fc.PerIPRate
	}
	if fc.PerIPBurst != nil {
		cfg.PerIPBurst = *fc.PerIPBurst
	}
	if err := applyFileDuration(&cfg.IPCleanup, fc.IPCleanup, path, "ip_cleanup"); err != nil {
		return err
	}
	return nil
}

func applyFileDuration(dst *time.Duration, src *string, path, key string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("config: %s: invalid duration for %s: %w", path, key, err)
	}
	*dst = d
	return nil
}
