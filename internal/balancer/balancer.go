package balancer

import (
	"sync"
	"time"
)

// Balancer is the process-wide admission arbiter. One instance guards one
// logical resource pool; construct it at startup and pass it explicitly to
// every component that needs admission control.
//
// All counters live behind a single mutex. The mutex is held only for the
// short check or bookkeeping step, never while admitted work executes.
type Balancer struct {
	cfg Config

	mu sync.Mutex
	st *stats

	// now is replaceable in tests; time.Time carries a monotonic reading,
	// so cooldown comparisons are immune to wall-clock adjustments.
	now func() time.Time
}

// New builds a Balancer from a validated configuration.
func New(cfg Config) (*Balancer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Balancer{
		cfg: cfg,
		st:  newStats(),
		now: time.Now,
	}, nil
}

// Config returns the immutable admission policy.
func (b *Balancer) Config() Config {
	return b.cfg
}

// canRunLocked evaluates admission for w at instant now. Caller holds b.mu.
func (b *Balancer) canRunLocked(w Weight, now time.Time) bool {
	if !w.Throttled() {
		return true
	}
	cs := b.st.class(w)
	tooBusy := cs.running >= b.cfg.maxParallel(w)
	tooSoon := !cs.lastAdmission.IsZero() && now.Sub(cs.lastAdmission) < b.cfg.cooldown(w)
	return !(tooBusy || tooSoon)
}

// CanRun reports whether a task of the given weight would be admitted now.
// A negative answer counts as a rejected attempt. The check and the skip
// accounting are a single critical section: two concurrent callers can
// never both observe spare capacity that only one of them could use.
func (b *Balancer) CanRun(w Weight) bool {
	now := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.canRunLocked(w, now) {
		b.st.skips++
		return false
	}
	return true
}

// StartTask atomically checks admission and, on success, records the task
// as running and stamps the admission time. This is the only path that
// increments the running count.
func (b *Balancer) StartTask(w Weight) bool {
	now := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.canRunLocked(w, now) {
		b.st.skips++
		return false
	}
	if w.Throttled() {
		cs := b.st.class(w)
		cs.running++
		cs.lastAdmission = now
	}
	return true
}

// EndTask records completion of a task admitted via StartTask. It must be
// called exactly once per successful StartTask, on every exit path of the
// protected work; a missed call permanently leaks a slot. The decrement is
// floor-guarded so a stray call can never drive the count negative.
func (b *Balancer) EndTask(w Weight) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cs := b.st.class(w)
	if cs.running > 0 {
		cs.running--
	}
	cs.completed++
}

// Snapshot returns an atomically-read copy of all counters plus the
// derived skip rate. Pure read, safe to call at any rate.
func (b *Balancer) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{
		Running:   make(map[Weight]int, len(b.st.classes)),
		Completed: make(map[Weight]uint64, len(b.st.classes)),
		Skips:     b.st.skips,
	}
	var completedTotal uint64
	for w, cs := range b.st.classes {
		snap.Running[w] = cs.running
		snap.Completed[w] = cs.completed
		completedTotal += cs.completed
	}
	if attempts := completedTotal + b.st.skips; attempts > 0 {
		snap.SkipRate = float64(b.st.skips) / float64(attempts)
	}
	return snap
}

// ResetStats zeroes all counters. Intended for test isolation; racing it
// against in-flight admissions loses their accounting.
func (b *Balancer) ResetStats() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.st = newStats()
}
