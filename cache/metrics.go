package cache

import (
	"errors"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// poolStatGetter is satisfied by *redis.Ring and also by a mock in tests.
type poolStatGetter interface {
	PoolStats() *redis.PoolStats
}

var _ poolStatGetter = (*redis.Ring)(nil)

type metricsCollector struct {
	statGetter poolStatGetter

	lookups    *prometheus.Desc
	totalConns *prometheus.Desc
	idleConns  *prometheus.Desc
	staleConns *prometheus.Desc
}

// Describe is implemented with DescribeByCollect. That's possible because
// Collect always returns the same metrics with the same descriptors.
func (dbc metricsCollector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(dbc, ch)
}

// Collect triggers the ring's PoolStats and emits a constant metric per
// stat. PoolStats must be concurrency-safe, since Collect may be called
// concurrently by the Prometheus registry.
func (dbc metricsCollector) Collect(ch chan<- prometheus.Metric) {
	writeGauge := func(stat *prometheus.Desc, val uint32, labelValues ...string) {
		ch <- prometheus.MustNewConstMetric(stat, prometheus.GaugeValue, float64(val), labelValues...)
	}

	stats := dbc.statGetter.PoolStats()
	writeGauge(dbc.lookups, stats.Hits, "hit")
	writeGauge(dbc.lookups, stats.Misses, "miss")
	writeGauge(dbc.lookups, stats.Timeouts, "timeout")
	writeGauge(dbc.totalConns, stats.TotalConns)
	writeGauge(dbc.idleConns, stats.IdleConns)
	writeGauge(dbc.staleConns, stats.StaleConns)
}

func newClientMetricsCollector(statGetter poolStatGetter, labels prometheus.Labels) metricsCollector {
	return metricsCollector{
		statGetter: statGetter,
		lookups: prometheus.NewDesc(
			"hosttrie_cache_connection_pool_lookups",
			"Number of lookups for a connection in the pool, labeled by hit/miss",
			[]string{"result"}, labels),
		totalConns: prometheus.NewDesc(
			"hosttrie_cache_connection_pool_total_conns",
			"Number of total connections in the pool.",
			nil, labels),
		idleConns: prometheus.NewDesc(
			"hosttrie_cache_connection_pool_idle_conns",
			"Number of idle connections in the pool.",
			nil, labels),
		staleConns: prometheus.NewDesc(
			"hosttrie_cache_connection_pool_stale_conns",
			"Number of stale connections removed from the pool.",
			nil, labels),
	}
}

// MustRegisterClientMetricsCollector registers a metrics collector for the
// given Redis client. The collector reports metrics labelled by the
// provided addresses and username. A no-op if already registered with the
// same labels.
func MustRegisterClientMetricsCollector(client poolStatGetter, stats prometheus.Registerer, addrs map[string]string, user string) {
	var labelAddrs []string
	for addr := range addrs {
		labelAddrs = append(labelAddrs, addr)
	}
	slices.Sort(labelAddrs)
	labels := prometheus.Labels{
		"addresses": strings.Join(labelAddrs, ", "),
		"user":      user,
	}
	err := stats.Register(newClientMetricsCollector(client, labels))
	if err != nil {
		are := prometheus.AlreadyRegisteredError{}
		if errors.As(err, &are) {
			return
		}
		panic(err)
	}
}
