package loader

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	blog "github.com/quietdns/hosttrie/log"
	"github.com/quietdns/hosttrie/test"
	"github.com/quietdns/hosttrie/trie"
)

func TestMetricsObserveRunOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	c := trie.NewContainer()
	ref, err := c.NewTrie()
	test.AssertNotError(t, err, "NewTrie")

	src := "good.example.com\nbad host!!\n"
	_, err = Load(context.Background(), c, ref, strings.NewReader(src), Config{Format: FormatLines, Metrics: m}, blog.NewMock())
	test.AssertNotError(t, err, "Load")

	test.AssertMetricWithLabelsEquals(t, m.hostnamesTotal, prometheus.Labels{"outcome": "inserted"}, 1)
	test.AssertMetricWithLabelsEquals(t, m.hostnamesTotal, prometheus.Labels{"outcome": "rejected"}, 1)
}
