package dictionary

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeOK labels a successful lookup; failures use their Kind.
const OutcomeOK = "ok"

// Metrics holds the lookup collectors on a private registry so that one
// run's numbers can be written out as a node-exporter textfile.
type Metrics struct {
	Registry       *prometheus.Registry
	LookupsTotal   *prometheus.CounterVec
	LookupDuration prometheus.Histogram
	InFlight       prometheus.Gauge
}

// NewMetrics creates and registers the lookup collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hldict_lookups_total",
				Help: "Dictionary lookups by outcome (ok, timeout, network, status, decode, shape).",
			},
			[]string{"outcome"},
		),
		LookupDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hldict_lookup_duration_seconds",
				Help:    "Dictionary lookup latency in seconds.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hldict_lookups_in_flight",
				Help: "Dictionary lookups currently running.",
			},
		),
	}
	m.Registry.MustRegister(m.LookupsTotal, m.LookupDuration, m.InFlight)
	return m
}

// Observe records one finished lookup.
func (m *Metrics) Observe(err error, elapsed time.Duration) {
	outcome := OutcomeOK
	if err != nil {
		outcome = string(KindOf(err))
		if outcome == "" {
			outcome = string(KindNetwork)
		}
	}
	m.LookupsTotal.WithLabelValues(outcome).Inc()
	m.LookupDuration.Observe(elapsed.Seconds())
}

// WriteTextfile writes the registry in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
