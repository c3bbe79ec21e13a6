package loader

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus instrumentation for bulk load runs, in the
// same registration style as cache's metricsCollector: counters that a
// long-lived loading process registers once and updates on every run.
type Metrics struct {
	loadDuration   prometheus.Histogram
	hostnamesTotal *prometheus.CounterVec
	dedupHits      prometheus.Counter
}

// NewMetrics constructs and registers a Metrics against reg. A nil reg is
// permitted and yields a Metrics that is safe to use but observed by
// nobody, so that tests and one-shot CLI invocations can skip registration
// without special-casing every call site.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hosttrie_loader_run_duration_seconds",
			Help:    "Duration of a bulk load run, from first candidate read to final Container.Add.",
			Buckets: prometheus.DefBuckets,
		}),
		hostnamesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hosttrie_loader_hostnames_total",
			Help: "Hostnames processed by the loader, labeled by outcome.",
		}, []string{"outcome"}),
		dedupHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hosttrie_loader_dedup_hits_total",
			Help: "Segment allocations avoided by the construction-time dedup assist.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.loadDuration, m.hostnamesTotal, m.dedupHits)
	}
	return m
}

func (m *Metrics) observe(res Result, seconds float64) {
	if m == nil {
		return
	}
	m.loadDuration.Observe(seconds)
	m.hostnamesTotal.WithLabelValues("inserted").Add(float64(res.Inserted))
	m.hostnamesTotal.WithLabelValues("skipped").Add(float64(res.Skipped))
	m.hostnamesTotal.WithLabelValues("rejected").Add(float64(res.Rejected))
}
