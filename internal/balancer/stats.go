package balancer

import "time"

// classState tracks the mutable counters of one weight class.
type classState struct {
	running       int
	completed     uint64
	lastAdmission time.Time
}

// stats is the only mutable state of a Balancer. It is owned exclusively
// by one Balancer and touched only under its mutex.
type stats struct {
	classes map[Weight]*classState
	skips   uint64
}

func newStats() *stats {
	return &stats{classes: make(map[Weight]*classState)}
}

func (s *stats) class(w Weight) *classState {
	cs, ok := s.classes[w]
	if !ok {
		cs = &classState{}
		s.classes[w] = cs
	}
	return cs
}

// Snapshot is a consistent copy of a Balancer's counters at one instant.
type Snapshot struct {
	Running   map[Weight]int    `json:"running"`
	Completed map[Weight]uint64 `json:"completed"`
	Skips     uint64            `json:"skips"`
	SkipRate  float64           `json:"skip_rate"`
}

// RunningFor returns the in-flight count for a class, zero if untracked.
func (s Snapshot) RunningFor(w Weight) int {
	return s.Running[w]
}

// CompletedFor returns the cumulative completions for a class.
func (s Snapshot) CompletedFor(w Weight) uint64 {
	return s.Completed[w]
}

// CompletedTotal sums completions across all classes.
func (s Snapshot) CompletedTotal() uint64 {
	var total uint64
	for _, n := range s.Completed {
		total += n
	}
	return total
}
