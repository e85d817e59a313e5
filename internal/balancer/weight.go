// Package balancer provides runtime admission control for weighted work.
//
// A Balancer gates how many medium and heavy units of work may run
// concurrently and enforces a minimum interval between successive
// admissions of the same weight class. Light work is never throttled.
package balancer

import "fmt"

// Weight classifies the resource cost of a unit of work.
type Weight string

const (
	// WeightLight marks quick tasks that always run.
	WeightLight Weight = "light"
	// WeightMedium marks moderate tasks subject to some throttling.
	WeightMedium Weight = "medium"
	// WeightHeavy marks CPU/memory intensive tasks with strict limits.
	WeightHeavy Weight = "heavy"
)

// ParseWeight converts a string into a Weight, rejecting unknown values.
func ParseWeight(s string) (Weight, error) {
	switch Weight(s) {
	case WeightLight, WeightMedium, WeightHeavy:
		return Weight(s), nil
	default:
		return "", fmt.Errorf("balancer: unknown weight class %q", s)
	}
}

func (w Weight) String() string {
	return string(w)
}

// Throttled reports whether the class is subject to admission control.
func (w Weight) Throttled() bool {
	return w == WeightMedium || w == WeightHeavy
}
