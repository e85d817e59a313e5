// Package metrics exposes admission statistics, both as a flat text
// exposition and through the Prometheus client registry.
package metrics

import (
	"fmt"
	"strings"

	"github.com/betti-labs/betti/internal/balancer"
)

// expositionOrder fixes the series order of the text format. Light work is
// never admitted through accounting, so it carries no series.
var expositionOrder = []balancer.Weight{balancer.WeightHeavy, balancer.WeightMedium}

// Exposition renders a snapshot into the flat line-oriented text format:
// one gauge per class for in-flight work, one counter per class for
// completions, the skip counter and the derived skip rate. Pure function,
// callable at any rate.
func Exposition(snap balancer.Snapshot) string {
	var b strings.Builder

	for _, w := range expositionOrder {
		fmt.Fprintf(&b, "# HELP betti_%s_running Current number of %s tasks running\n", w, w)
		fmt.Fprintf(&b, "# TYPE betti_%s_running gauge\n", w)
		fmt.Fprintf(&b, "betti_%s_running %d\n\n", w, snap.RunningFor(w))
	}
	for _, w := range expositionOrder {
		fmt.Fprintf(&b, "# HELP betti_%s_completed Total %s tasks completed\n", w, w)
		fmt.Fprintf(&b, "# TYPE betti_%s_completed counter\n", w)
		fmt.Fprintf(&b, "betti_%s_completed %d\n\n", w, snap.CompletedFor(w))
	}

	fmt.Fprintf(&b, "# HELP betti_skips Total tasks skipped for balance\n")
	fmt.Fprintf(&b, "# TYPE betti_skips counter\n")
	fmt.Fprintf(&b, "betti_skips %d\n\n", snap.Skips)

	fmt.Fprintf(&b, "# HELP betti_skip_rate Ratio of skips to total attempts\n")
	fmt.Fprintf(&b, "# TYPE betti_skip_rate gauge\n")
	fmt.Fprintf(&b, "betti_skip_rate %.4f\n", snap.SkipRate)

	return b.String()
}
