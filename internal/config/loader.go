package config

// Load assembles the configuration with precedence ENV > file > defaults
// and validates the result. An empty path skips the file layer.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return AppConfig{}, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	cfg.Listen = ParseString("BETTI_LISTEN", cfg.Listen)
	cfg.LogLevel = ParseString("BETTI_LOG_LEVEL", cfg.LogLevel)

	cfg.MaxParallelHeavy = ParseInt("BETTI_MAX_PARALLEL_HEAVY", cfg.MaxParallelHeavy)
	cfg.MaxParallelMedium = ParseInt("BETTI_MAX_PARALLEL_MEDIUM", cfg.MaxParallelMedium)
	cfg.CooldownHeavy = ParseDuration("BETTI_COOLDOWN_HEAVY", cfg.CooldownHeavy)
	cfg.CooldownMedium = ParseDuration("BETTI_COOLDOWN_MEDIUM", cfg.CooldownMedium)
	cfg.PollInterval = ParseDuration("BETTI_POLL_INTERVAL", cfg.PollInterval)
	cfg.RecoveryFactor = ParseFloat("BETTI_RECOVERY_FACTOR", cfg.RecoveryFactor)

	cfg.GlobalRate = ParseFloat("BETTI_GLOBAL_RATE", cfg.GlobalRate)
	cfg.GlobalBurst = ParseInt("BETTI_GLOBAL_BURST", cfg.GlobalBurst)
	cfg.PerIPRate = ParseFloat("BETTI_PER_IP_RATE", cfg.PerIPRate)
	cfg.PerIPBurst = ParseInt("BETTI_PER_IP_BURST", cfg.PerIPBurst)
	cfg.IPCleanup = ParseDuration("BETTI_IP_CLEANUP", cfg.IPCleanup)
}
