package metric

import (
	"sync"
	"time"

	"github.com/itsneelabh/pulse/core"
)

// Metric is one logical, named metric. It owns a set of incarnations —
// independent instrument instances distinguished by tag set — which all
// share the metric's name, unit, and instrument type.
//
// The unit and instrument type are fixed at first creation and never
// change for the remainder of the registry's life.
type Metric struct {
	name           string
	unit           MeasurementUnit
	instrumentType InstrumentType

	// cell is the registry's shared factory cell; instruments built here
	// hold it by reference so reconfiguration reaches them.
	cell      *factoryCell
	scheduler core.Scheduler

	// Creation-time instrument parameters; zero values defer to the
	// factory's current policy.
	explicitRange  *DynamicRange
	sampleInterval time.Duration

	mu           sync.RWMutex
	incarnations map[string]*incarnation
}

// incarnation is one tag-set-specific instrument instance.
type incarnation struct {
	tags       Tags
	instrument interface{}
}

func newMetric(name string, typ InstrumentType, unit MeasurementUnit, cell *factoryCell,
	scheduler core.Scheduler, explicitRange *DynamicRange, sampleInterval time.Duration) *Metric {
	return &Metric{
		name:           name,
		unit:           unit,
		instrumentType: typ,
		cell:           cell,
		scheduler:      scheduler,
		explicitRange:  explicitRange,
		sampleInterval: sampleInterval,
		incarnations:   make(map[string]*incarnation),
	}
}

// Name returns the metric's registry-wide unique name.
func (m *Metric) Name() string { return m.name }

// Unit returns the unit fixed at first creation.
func (m *Metric) Unit() MeasurementUnit { return m.unit }

// Type returns the instrument type fixed at first creation.
func (m *Metric) Type() InstrumentType { return m.instrumentType }

// instrumentFor returns the incarnation for the given tag set, creating
// it at most once. Contention is limited to callers of the same metric;
// the registry-wide map is never locked here.
func (m *Metric) instrumentFor(tags Tags) interface{} {
	key := tags.key()

	m.mu.RLock()
	inc, ok := m.incarnations[key]
	m.mu.RUnlock()
	if ok {
		return inc.instrument
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Re-check after acquiring the write lock
	if inc, ok := m.incarnations[key]; ok {
		return inc.instrument
	}
	inst := m.buildInstrument()
	m.incarnations[key] = &incarnation{tags: tags.clone(), instrument: inst}
	return inst
}

// buildInstrument constructs the instrument through the factory held in
// the shared cell at this moment.
func (m *Metric) buildInstrument() interface{} {
	factory := m.cell.load()
	switch m.instrumentType {
	case InstrumentTypeCounter:
		return factory.buildCounter()
	case InstrumentTypeGauge:
		return factory.buildGauge()
	case InstrumentTypeHistogram:
		return factory.buildHistogram(m.name, m.cell, m.explicitRange)
	case InstrumentTypeRangeSampler:
		return factory.buildRangeSampler(m.name, m.cell, m.explicitRange, m.sampleInterval, m.scheduler)
	default:
		return nil
	}
}

// incarnationList copies the incarnations so harvesting can run without
// holding the metric lock across instrument-level synchronization.
func (m *Metric) incarnationList() []*incarnation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*incarnation, 0, len(m.incarnations))
	for _, inc := range m.incarnations {
		list = append(list, inc)
	}
	return list
}

// counterValues harvests every counter incarnation of this metric.
func (m *Metric) counterValues(reset bool) []CounterValueSnapshot {
	incs := m.incarnationList()
	out := make([]CounterValueSnapshot, 0, len(incs))
	for _, inc := range incs {
		c, ok := inc.instrument.(*Counter)
		if !ok {
			continue
		}
		out = append(out, CounterValueSnapshot{
			Name:  m.name,
			Tags:  inc.tags.clone(),
			Unit:  m.unit,
			Value: c.snapshot(reset),
		})
	}
	return out
}

// gaugeValues harvests every gauge incarnation of this metric.
func (m *Metric) gaugeValues() []GaugeValueSnapshot {
	incs := m.incarnationList()
	out := make([]GaugeValueSnapshot, 0, len(incs))
	for _, inc := range incs {
		g, ok := inc.instrument.(*Gauge)
		if !ok {
			continue
		}
		out = append(out, GaugeValueSnapshot{
			Name:  m.name,
			Tags:  inc.tags.clone(),
			Unit:  m.unit,
			Value: g.Value(),
		})
	}
	return out
}

// distributions harvests every histogram or range-sampler incarnation.
func (m *Metric) distributions(reset bool) []DistributionSnapshot {
	incs := m.incarnationList()
	out := make([]DistributionSnapshot, 0, len(incs))
	for _, inc := range incs {
		var d Distribution
		switch inst := inc.instrument.(type) {
		case *Histogram:
			d = inst.snapshot(reset)
		case *RangeSampler:
			d = inst.snapshot(reset)
		default:
			continue
		}
		out = append(out, DistributionSnapshot{
			Name:         m.name,
			Tags:         inc.tags.clone(),
			Unit:         m.unit,
			Distribution: d,
		})
	}
	return out
}

// descriptors enumerates this metric's incarnations for Status.
func (m *Metric) descriptors() []MetricDescriptor {
	incs := m.incarnationList()
	out := make([]MetricDescriptor, 0, len(incs))
	for _, inc := range incs {
		out = append(out, MetricDescriptor{
			Name:           m.name,
			Tags:           inc.tags.clone(),
			Unit:           m.unit,
			InstrumentType: m.instrumentType,
		})
	}
	return out
}

// CounterMetric is the long-lived handle for a counter metric.
type CounterMetric struct {
	*Metric
}

// WithTags returns the counter incarnation for the given tag set,
// creating it on first use.
func (m *CounterMetric) WithTags(tags Tags) *Counter {
	return m.instrumentFor(tags).(*Counter)
}

// Increment adds one to the untagged incarnation.
func (m *CounterMetric) Increment() {
	m.WithTags(nil).Increment()
}

// Add adds n to the untagged incarnation.
func (m *CounterMetric) Add(n int64) {
	m.WithTags(nil).Add(n)
}

// GaugeMetric is the long-lived handle for a gauge metric.
type GaugeMetric struct {
	*Metric
}

// WithTags returns the gauge incarnation for the given tag set,
// creating it on first use.
func (m *GaugeMetric) WithTags(tags Tags) *Gauge {
	return m.instrumentFor(tags).(*Gauge)
}

// Set replaces the untagged incarnation's value.
func (m *GaugeMetric) Set(value float64) {
	m.WithTags(nil).Set(value)
}

// Add adjusts the untagged incarnation's value by delta.
func (m *GaugeMetric) Add(delta float64) {
	m.WithTags(nil).Add(delta)
}

// HistogramMetric is the long-lived handle for a histogram metric.
type HistogramMetric struct {
	*Metric
}

// WithTags returns the histogram incarnation for the given tag set,
// creating it on first use.
func (m *HistogramMetric) WithTags(tags Tags) *Histogram {
	return m.instrumentFor(tags).(*Histogram)
}

// Record adds a measurement to the untagged incarnation.
func (m *HistogramMetric) Record(value int64) {
	m.WithTags(nil).Record(value)
}

// RangeSamplerMetric is the long-lived handle for a range-sampler metric.
type RangeSamplerMetric struct {
	*Metric
}

// WithTags returns the range-sampler incarnation for the given tag set,
// creating it on first use.
func (m *RangeSamplerMetric) WithTags(tags Tags) *RangeSampler {
	return m.instrumentFor(tags).(*RangeSampler)
}

// Increment raises the untagged incarnation's value by one.
func (m *RangeSamplerMetric) Increment() {
	m.WithTags(nil).Increment()
}

// Decrement lowers the untagged incarnation's value by one.
func (m *RangeSamplerMetric) Decrement() {
	m.WithTags(nil).Decrement()
}

// Add adjusts the untagged incarnation's value by delta.
func (m *RangeSamplerMetric) Add(delta int64) {
	m.WithTags(nil).Add(delta)
}
