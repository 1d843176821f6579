// Package prom bridges pulse snapshots into a Prometheus registry.
package prom

import (
	"context"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/itsneelabh/pulse/metric"
)

// Collector exposes the most recent snapshot as Prometheus metrics. It
// implements both report.Reporter (to receive snapshots) and
// prometheus.Collector (to serve them on scrape).
//
// Counters arrive from pulse as per-period deltas; the collector
// accumulates them so Prometheus sees the cumulative series it expects.
// Gauges and distributions reflect the latest snapshot only.
type Collector struct {
	namespace string

	mu       sync.Mutex
	counters map[string]*counterSeries
	latest   *metric.Snapshot
}

type counterSeries struct {
	name  string
	tags  metric.Tags
	total float64
}

// NewCollector creates a collector. namespace prefixes every metric
// name; pass "" for none.
func NewCollector(namespace string) *Collector {
	return &Collector{
		namespace: namespace,
		counters:  make(map[string]*counterSeries),
	}
}

// Name implements report.Reporter.
func (c *Collector) Name() string { return "prometheus" }

// ReportSnapshot implements report.Reporter.
func (c *Collector) ReportSnapshot(_ context.Context, snapshot *metric.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cv := range snapshot.Counters {
		key := cv.Name + "|" + cv.Tags.String()
		series, ok := c.counters[key]
		if !ok {
			series = &counterSeries{name: cv.Name, tags: cv.Tags}
			c.counters[key] = series
		}
		series.total += float64(cv.Value)
	}
	c.latest = snapshot
	return nil
}

// Describe implements prometheus.Collector. The metric set is dynamic,
// so descriptions are derived from a collect pass.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, series := range c.counters {
		ch <- prometheus.MustNewConstMetric(
			c.desc(series.name, "_total", series.tags),
			prometheus.CounterValue,
			series.total,
		)
	}

	if c.latest == nil {
		return
	}
	for _, gv := range c.latest.Gauges {
		ch <- prometheus.MustNewConstMetric(
			c.desc(gv.Name, "", gv.Tags),
			prometheus.GaugeValue,
			gv.Value,
		)
	}
	for _, ds := range c.latest.Histograms {
		c.collectDistribution(ch, ds)
	}
	for _, ds := range c.latest.RangeSamplers {
		c.collectDistribution(ch, ds)
	}
}

func (c *Collector) collectDistribution(ch chan<- prometheus.Metric, ds metric.DistributionSnapshot) {
	d := ds.Distribution
	ch <- prometheus.MustNewConstSummary(
		c.desc(ds.Name, "", ds.Tags),
		uint64(d.Count),
		float64(d.Sum),
		map[float64]float64{
			0.5:  float64(d.Percentile(50)),
			0.9:  float64(d.Percentile(90)),
			0.99: float64(d.Percentile(99)),
		},
	)
}

func (c *Collector) desc(name, suffix string, tags metric.Tags) *prometheus.Desc {
	fqName := sanitize(name) + suffix
	if c.namespace != "" {
		fqName = sanitize(c.namespace) + "_" + fqName
	}
	constLabels := make(prometheus.Labels, len(tags))
	for k, v := range tags {
		constLabels[sanitize(k)] = v
	}
	return prometheus.NewDesc(fqName, "pulse metric "+name, nil, constLabels)
}

// sanitize maps pulse metric names (dotted) onto the Prometheus
// character set.
func sanitize(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9' && i > 0:
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
