// Package otelbridge forwards pulse snapshots through the
// OpenTelemetry metric API, so a process already shipping OTel data can
// carry pulse metrics on the same pipeline.
package otelbridge

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/itsneelabh/pulse/metric"
)

// Bridge implements report.Reporter over an OpenTelemetry meter.
//
// Counters map to Int64Counter (pulse already delivers per-period
// deltas, which is exactly what Add expects). Gauges map to
// Float64Gauge. Distributions are flattened into a count counter plus
// per-statistic gauge readings, since a harvested distribution cannot
// be replayed value by value.
type Bridge struct {
	meter otelmetric.Meter

	// Instrument caches with double-checked creation; instrument
	// construction is rare, recording is hot.
	mu         sync.RWMutex
	counters   map[string]otelmetric.Int64Counter
	gauges     map[string]otelmetric.Float64Gauge
	statGauges map[string]otelmetric.Float64Gauge
}

// NewBridge creates a bridge on the given meter provider. A nil
// provider uses the global one; configure it before reporting starts.
func NewBridge(meterName string, provider otelmetric.MeterProvider) *Bridge {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	if meterName == "" {
		meterName = "pulse"
	}
	return &Bridge{
		meter:      provider.Meter(meterName),
		counters:   make(map[string]otelmetric.Int64Counter),
		gauges:     make(map[string]otelmetric.Float64Gauge),
		statGauges: make(map[string]otelmetric.Float64Gauge),
	}
}

// Name implements report.Reporter.
func (b *Bridge) Name() string { return "otel" }

// ReportSnapshot implements report.Reporter.
func (b *Bridge) ReportSnapshot(ctx context.Context, snapshot *metric.Snapshot) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, cv := range snapshot.Counters {
		counter, err := b.counterFor(cv.Name, cv.Unit)
		if err != nil {
			record(err)
			continue
		}
		counter.Add(ctx, cv.Value, otelmetric.WithAttributes(attributesFor(cv.Tags)...))
	}

	for _, gv := range snapshot.Gauges {
		gauge, err := b.gaugeFor(gv.Name, gv.Unit)
		if err != nil {
			record(err)
			continue
		}
		gauge.Record(ctx, gv.Value, otelmetric.WithAttributes(attributesFor(gv.Tags)...))
	}

	for _, ds := range snapshot.Histograms {
		record(b.reportDistribution(ctx, ds))
	}
	for _, ds := range snapshot.RangeSamplers {
		record(b.reportDistribution(ctx, ds))
	}
	return firstErr
}

func (b *Bridge) reportDistribution(ctx context.Context, ds metric.DistributionSnapshot) error {
	counter, err := b.counterFor(ds.Name+".count", metric.UnitNone)
	if err != nil {
		return err
	}
	counter.Add(ctx, ds.Distribution.Count, otelmetric.WithAttributes(attributesFor(ds.Tags)...))

	gauge, err := b.statGaugeFor(ds.Name, ds.Unit)
	if err != nil {
		return err
	}
	stats := map[string]float64{
		"min":  float64(ds.Distribution.Min),
		"max":  float64(ds.Distribution.Max),
		"p50":  float64(ds.Distribution.Percentile(50)),
		"p90":  float64(ds.Distribution.Percentile(90)),
		"p99":  float64(ds.Distribution.Percentile(99)),
		"mean": ds.Distribution.Mean(),
	}
	for stat, value := range stats {
		attrs := append(attributesFor(ds.Tags), attribute.String("stat", stat))
		gauge.Record(ctx, value, otelmetric.WithAttributes(attrs...))
	}
	return nil
}

func (b *Bridge) counterFor(name string, unit metric.MeasurementUnit) (otelmetric.Int64Counter, error) {
	b.mu.RLock()
	counter, exists := b.counters[name]
	b.mu.RUnlock()
	if exists {
		return counter, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// Double-check after acquiring write lock
	if counter, exists = b.counters[name]; exists {
		return counter, nil
	}
	counter, err := b.meter.Int64Counter(name, otelmetric.WithUnit(ucum(unit)))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	b.counters[name] = counter
	return counter, nil
}

func (b *Bridge) gaugeFor(name string, unit metric.MeasurementUnit) (otelmetric.Float64Gauge, error) {
	return gaugeFromCache(b, b.gauges, name, unit)
}

func (b *Bridge) statGaugeFor(name string, unit metric.MeasurementUnit) (otelmetric.Float64Gauge, error) {
	return gaugeFromCache(b, b.statGauges, name, unit)
}

func gaugeFromCache(b *Bridge, cache map[string]otelmetric.Float64Gauge, name string,
	unit metric.MeasurementUnit) (otelmetric.Float64Gauge, error) {
	b.mu.RLock()
	gauge, exists := cache[name]
	b.mu.RUnlock()
	if exists {
		return gauge, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if gauge, exists = cache[name]; exists {
		return gauge, nil
	}
	gauge, err := b.meter.Float64Gauge(name, otelmetric.WithUnit(ucum(unit)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge %s: %w", name, err)
	}
	cache[name] = gauge
	return gauge, nil
}

func attributesFor(tags metric.Tags) []attribute.KeyValue {
	if len(tags) == 0 {
		return nil
	}
	attrs := make([]attribute.KeyValue, 0, len(tags))
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}

// ucum maps pulse measurement units onto the UCUM codes the OTel API
// expects.
func ucum(unit metric.MeasurementUnit) string {
	switch unit {
	case metric.UnitNanoseconds:
		return "ns"
	case metric.UnitMicroseconds:
		return "us"
	case metric.UnitMilliseconds:
		return "ms"
	case metric.UnitSeconds:
		return "s"
	case metric.UnitBytes:
		return "By"
	case metric.UnitKilobytes:
		return "KiBy"
	case metric.UnitMegabytes:
		return "MiBy"
	default:
		return "1"
	}
}
