package balancer

import (
	"sync"
	"testing"
	"time"
)

// fixedClock lets tests step admission time deterministically.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestBalancer(t *testing.T, cfg Config) *Balancer {
	t.Helper()
	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestParseWeight(t *testing.T) {
	for _, s := range []string{"light", "medium", "heavy"} {
		w, err := ParseWeight(s)
		if err != nil {
			t.Fatalf("ParseWeight(%q): %v", s, err)
		}
		if w.String() != s {
			t.Fatalf("ParseWeight(%q) = %q", s, w)
		}
	}
	if _, err := ParseWeight("enormous"); err == nil {
		t.Fatal("expected error for unknown weight class")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero ceilings allowed", func(c *Config) { c.MaxParallelHeavy = 0; c.MaxParallelMedium = 0 }, true},
		{"negative heavy ceiling", func(c *Config) { c.MaxParallelHeavy = -1 }, false},
		{"negative medium ceiling", func(c *Config) { c.MaxParallelMedium = -3 }, false},
		{"negative heavy cooldown", func(c *Config) { c.CooldownHeavy = -time.Millisecond }, false},
		{"negative medium cooldown", func(c *Config) { c.CooldownMedium = -time.Millisecond }, false},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			_, err := New(cfg)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected construction to fail")
			}
		})
	}
}

func TestLightAlwaysRuns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxParallelHeavy = 0
	cfg.MaxParallelMedium = 0
	b := newTestBalancer(t, cfg)

	// Saturate heavy so any shared state would be "busy".
	if b.StartTask(WeightHeavy) {
		t.Fatal("heavy must be rejected with a ceiling of 0")
	}
	for i := 0; i < 100; i++ {
		if !b.CanRun(WeightLight) {
			t.Fatal("light must always be admitted")
		}
		if !b.StartTask(WeightLight) {
			t.Fatal("light StartTask must always succeed")
		}
	}
	if got := b.Snapshot().RunningFor(WeightLight); got != 0 {
		t.Fatalf("light work is never tracked as running, got %d", got)
	}
}

func TestConcurrentStartAdmitsExactlyCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxParallelHeavy = 4
	cfg.CooldownHeavy = 0
	b := newTestBalancer(t, cfg)

	const callers = 32
	var (
		start    sync.WaitGroup
		done     sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	start.Add(1)
	for i := 0; i < callers; i++ {
		done.Add(1)
		go func() {
			defer done.Done()
			start.Wait()
			if b.StartTask(WeightHeavy) {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	start.Done()
	done.Wait()

	if admitted != 4 {
		t.Fatalf("expected exactly 4 admissions, got %d", admitted)
	}
	snap := b.Snapshot()
	if snap.RunningFor(WeightHeavy) != 4 {
		t.Fatalf("expected running=4, got %d", snap.RunningFor(WeightHeavy))
	}
	if snap.Skips != callers-4 {
		t.Fatalf("expected %d skips, got %d", callers-4, snap.Skips)
	}
}

func TestCooldownBlocksSecondAdmission(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CooldownHeavy = 20 * time.Millisecond
	b := newTestBalancer(t, cfg)

	clock := &fixedClock{now: time.Now()}
	b.now = clock.Now

	if !b.StartTask(WeightHeavy) {
		t.Fatal("first admission must succeed")
	}
	b.EndTask(WeightHeavy)

	clock.Advance(5 * time.Millisecond)
	if b.StartTask(WeightHeavy) {
		t.Fatal("second admission inside the cooldown must fail even with spare capacity")
	}

	clock.Advance(15 * time.Millisecond)
	if !b.StartTask(WeightHeavy) {
		t.Fatal("admission after the cooldown must succeed")
	}
}

func TestCooldownIsPerClass(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CooldownHeavy = time.Hour
	cfg.CooldownMedium = 0
	b := newTestBalancer(t, cfg)

	if !b.StartTask(WeightHeavy) {
		t.Fatal("first heavy admission must succeed")
	}
	if b.StartTask(WeightHeavy) {
		t.Fatal("heavy cooldown must reject the second heavy admission")
	}
	if !b.StartTask(WeightMedium) {
		t.Fatal("medium admission must not be affected by the heavy cooldown")
	}
}

func TestCanRunCountsRejections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxParallelHeavy = 0
	b := newTestBalancer(t, cfg)

	for i := 0; i < 3; i++ {
		if b.CanRun(WeightHeavy) {
			t.Fatal("expected rejection with a ceiling of 0")
		}
	}
	if got := b.Snapshot().Skips; got != 3 {
		t.Fatalf("expected 3 skips, got %d", got)
	}
}

func TestEndTaskFloorsAtZero(t *testing.T) {
	b := newTestBalancer(t, DefaultConfig())

	b.EndTask(WeightHeavy)
	b.EndTask(WeightHeavy)

	snap := b.Snapshot()
	if got := snap.RunningFor(WeightHeavy); got != 0 {
		t.Fatalf("running must never go negative, got %d", got)
	}
	if got := snap.CompletedFor(WeightHeavy); got != 2 {
		t.Fatalf("expected completed=2, got %d", got)
	}
}

func TestAccountingPairsUp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CooldownHeavy = 0
	cfg.CooldownMedium = 0
	b := newTestBalancer(t, cfg)

	const rounds = 50
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := WeightHeavy
			if i%2 == 0 {
				w = WeightMedium
			}
			for !b.StartTask(w) {
				time.Sleep(100 * time.Microsecond)
			}
			b.EndTask(w)
		}(i)
	}
	wg.Wait()

	snap := b.Snapshot()
	for _, w := range []Weight{WeightLight, WeightMedium, WeightHeavy} {
		if got := snap.RunningFor(w); got != 0 {
			t.Fatalf("running[%s] = %d after all work completed", w, got)
		}
	}
	if got := snap.CompletedTotal(); got != rounds {
		t.Fatalf("expected %d completions, got %d", rounds, got)
	}
}

func TestSnapshotSkipRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxParallelHeavy = 1
	cfg.CooldownHeavy = 0
	b := newTestBalancer(t, cfg)

	if got := b.Snapshot().SkipRate; got != 0 {
		t.Fatalf("skip rate must be 0 with no attempts, got %v", got)
	}

	if !b.StartTask(WeightHeavy) {
		t.Fatal("first admission must succeed")
	}
	// Three rejected attempts while the slot is held.
	for i := 0; i < 3; i++ {
		b.CanRun(WeightHeavy)
	}
	b.EndTask(WeightHeavy)

	snap := b.Snapshot()
	want := 3.0 / 4.0
	if snap.SkipRate != want {
		t.Fatalf("expected skip rate %v, got %v", want, snap.SkipRate)
	}
}

func TestResetStats(t *testing.T) {
	b := newTestBalancer(t, DefaultConfig())

	if !b.StartTask(WeightHeavy) {
		t.Fatal("admission must succeed")
	}
	b.EndTask(WeightHeavy)
	b.ResetStats()

	snap := b.Snapshot()
	if snap.CompletedTotal() != 0 || snap.Skips != 0 {
		t.Fatalf("expected zeroed stats, got %+v", snap)
	}
	// Cooldown stamps are gone too: a fresh admission must pass.
	if !b.StartTask(WeightHeavy) {
		t.Fatal("admission after reset must succeed")
	}
}
