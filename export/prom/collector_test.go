package prom

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/pulse/metric"
)

func deltaSnapshot(value int64) *metric.Snapshot {
	return &metric.Snapshot{
		ID: "test",
		Counters: []metric.CounterValueSnapshot{
			{Name: "requests", Tags: metric.Tags{"code": "200"}, Unit: metric.UnitNone, Value: value},
		},
	}
}

func TestCollectorAccumulatesCounterDeltas(t *testing.T) {
	c := NewCollector("")

	require.NoError(t, c.ReportSnapshot(context.Background(), deltaSnapshot(5)))
	require.NoError(t, c.ReportSnapshot(context.Background(), deltaSnapshot(3)))

	expected := `
# HELP requests_total pulse metric requests
# TYPE requests_total counter
requests_total{code="200"} 8
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "requests_total"))
}

func TestCollectorGauges(t *testing.T) {
	c := NewCollector("")

	sn := &metric.Snapshot{
		ID: "test",
		Gauges: []metric.GaugeValueSnapshot{
			{Name: "queue.depth", Unit: metric.UnitNone, Value: 3},
		},
	}
	require.NoError(t, c.ReportSnapshot(context.Background(), sn))

	expected := `
# HELP queue_depth pulse metric queue.depth
# TYPE queue_depth gauge
queue_depth 3
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "queue_depth"))
}

func TestCollectorDistributionsAsSummaries(t *testing.T) {
	c := NewCollector("")

	sn := &metric.Snapshot{
		ID: "test",
		Histograms: []metric.DistributionSnapshot{
			{
				Name: "latency",
				Unit: metric.UnitMilliseconds,
				Distribution: metric.Distribution{
					Min: 10, Max: 20, Sum: 30, Count: 2,
					B: []metric.Bucket{{Value: 10, Count: 1}, {Value: 20, Count: 1}},
				},
			},
		},
	}
	require.NoError(t, c.ReportSnapshot(context.Background(), sn))

	expected := `
# HELP latency pulse metric latency
# TYPE latency summary
latency{quantile="0.5"} 10
latency{quantile="0.9"} 20
latency{quantile="0.99"} 20
latency_sum 30
latency_count 2
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "latency"))
}

func TestCollectorNamespaceAndSanitization(t *testing.T) {
	c := NewCollector("my-app")

	sn := &metric.Snapshot{
		ID: "test",
		Counters: []metric.CounterValueSnapshot{
			{Name: "http.5xx", Unit: metric.UnitNone, Value: 1},
		},
	}
	require.NoError(t, c.ReportSnapshot(context.Background(), sn))

	expected := `
# HELP my_app_http_5xx_total pulse metric http.5xx
# TYPE my_app_http_5xx_total counter
my_app_http_5xx_total 1
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "my_app_http_5xx_total"))
}

func TestCollectorEmptyBeforeFirstSnapshot(t *testing.T) {
	c := NewCollector("")
	assert.Equal(t, 0, testutil.CollectAndCount(c))
}
