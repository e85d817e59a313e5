package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Defaults(), cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
listen: ":9090"
max_parallel_heavy: 2
cooldown_heavy: 50ms
recovery_factor: 0.5
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Defaults()
	want.Listen = ":9090"
	want.MaxParallelHeavy = 2
	want.CooldownHeavy = 50 * time.Millisecond
	want.RecoveryFactor = 0.5
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("max_parallel_heavy: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BETTI_MAX_PARALLEL_HEAVY", "9")
	t.Setenv("BETTI_COOLDOWN_MEDIUM", "7ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxParallelHeavy != 9 {
		t.Fatalf("expected env override 9, got %d", cfg.MaxParallelHeavy)
	}
	if cfg.CooldownMedium != 7*time.Millisecond {
		t.Fatalf("expected 7ms, got %v", cfg.CooldownMedium)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("BETTI_MAX_PARALLEL_HEAVY", "-1")
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error for negative ceiling")
	}
}

func TestLoadRejectsBadDurationInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("cooldown_heavy: soon\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error for invalid duration")
	}
}

func TestParseHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("BETTI_TEST_INT", "not-a-number")
	if got := ParseInt("BETTI_TEST_INT", 42); got != 42 {
		t.Fatalf("expected fallback 42, got %d", got)
	}
	t.Setenv("BETTI_TEST_DUR", "sometime")
	if got := ParseDuration("BETTI_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("expected fallback 1s, got %v", got)
	}
	t.Setenv("BETTI_TEST_FLOAT", "x")
	if got := ParseFloat("BETTI_TEST_FLOAT", 0.8); got != 0.8 {
		t.Fatalf("expected fallback 0.8, got %v", got)
	}
}
