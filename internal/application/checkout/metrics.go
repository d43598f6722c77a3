package checkout

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the placement RED metrics, registered once in main and
// injected; the service never instantiates collectors itself.
type Metrics struct {
	Placements *prometheus.CounterVec
	Duration   prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Placements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_placements_total",
				Help: "Total number of order placement attempts.",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "order_placement_duration_seconds",
				Help:    "Duration of order placement attempts in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Placements, m.Duration)
	}
	return m
}

func (m *Metrics) observe(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Placements.WithLabelValues(outcome).Inc()
	m.Duration.Observe(seconds)
}
