package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/betti-labs/betti/internal/balancer"
)

var (
	runningDesc = prometheus.NewDesc(
		"betti_admission_running",
		"Current number of admitted tasks in flight, by weight class.",
		[]string{"class"}, nil,
	)
	completedDesc = prometheus.NewDesc(
		"betti_admission_completed_total",
		"Total tasks completed, by weight class.",
		[]string{"class"}, nil,
	)
	skipsDesc = prometheus.NewDesc(
		"betti_admission_skips_total",
		"Total rejected admission attempts.",
		nil, nil,
	)
	skipRateDesc = prometheus.NewDesc(
		"betti_admission_skip_rate",
		"Ratio of rejected attempts to total attempts.",
		nil, nil,
	)
)

// Collector bridges a Balancer into the Prometheus registry. It reads a
// consistent snapshot at scrape time instead of keeping shadow counters,
// so the scrape can never disagree with the balancer's own accounting.
type Collector struct {
	b *balancer.Balancer
}

// NewCollector wraps the given balancer for registration.
func NewCollector(b *balancer.Balancer) *Collector {
	return &Collector{b: b}
}

// MustRegister attaches the balancer to the default Prometheus registry.
func MustRegister(b *balancer.Balancer) {
	prometheus.MustRegister(NewCollector(b))
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- runningDesc
	ch <- completedDesc
	ch <- skipsDesc
	ch <- skipRateDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.b.Snapshot()

	for _, w := range expositionOrder {
		ch <- prometheus.MustNewConstMetric(runningDesc, prometheus.GaugeValue, float64(snap.RunningFor(w)), w.String())
		ch <- prometheus.MustNewConstMetric(completedDesc, prometheus.CounterValue, float64(snap.CompletedFor(w)), w.String())
	}
	ch <- prometheus.MustNewConstMetric(skipsDesc, prometheus.CounterValue, float64(snap.Skips))
	ch <- prometheus.MustNewConstMetric(skipRateDesc, prometheus.GaugeValue, snap.SkipRate)
}
