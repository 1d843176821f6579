package metric

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/itsneelabh/pulse/core"
)

// Settings is the instrument-construction policy consumed by the
// registry. It is the opaque configuration token passed to Reconfigure;
// the registry never inspects it beyond building a factory from it.
type Settings struct {
	// DefaultHistogramRange applies to histograms (and timers) created
	// without an explicit dynamic range.
	DefaultHistogramRange DynamicRange

	// DefaultRangeSamplerRange applies to range samplers created without
	// an explicit dynamic range.
	DefaultRangeSamplerRange DynamicRange

	// DefaultSampleInterval applies to range samplers created without an
	// explicit sample interval.
	DefaultSampleInterval time.Duration

	// PerMetric overrides the defaults for individual metric names.
	PerMetric map[string]InstrumentOverrides
}

// InstrumentOverrides adjusts factory defaults for a single metric name.
type InstrumentOverrides struct {
	Range          *DynamicRange
	SampleInterval time.Duration
}

// DefaultSettings returns the policy used when no configuration is given.
func DefaultSettings() Settings {
	return Settings{
		DefaultHistogramRange:    DefaultDynamicRange(),
		DefaultRangeSamplerRange: DefaultDynamicRange(),
		DefaultSampleInterval:    200 * time.Millisecond,
	}
}

// validate checks that every range in the settings can back an
// instrument. Called before a factory swap so a bad reconfigure never
// replaces a working policy.
func (s Settings) validate() error {
	if err := s.DefaultHistogramRange.validate(); err != nil {
		return fmt.Errorf("default histogram range: %w", err)
	}
	if err := s.DefaultRangeSamplerRange.validate(); err != nil {
		return fmt.Errorf("default range sampler range: %w", err)
	}
	if s.DefaultSampleInterval <= 0 {
		return fmt.Errorf("default sample interval must be positive, got %v", s.DefaultSampleInterval)
	}
	for name, o := range s.PerMetric {
		if o.Range != nil {
			if err := o.Range.validate(); err != nil {
				return fmt.Errorf("override for %q: %w", name, err)
			}
		}
		if o.SampleInterval < 0 {
			return fmt.Errorf("override for %q: sample interval must not be negative", name)
		}
	}
	return nil
}

// InstrumentFactory resolves the effective construction policy for a
// metric name. A factory is immutable once built; reconfiguration
// replaces the whole factory via the registry's swappable cell rather
// than mutating fields, so readers never observe a half-updated policy.
type InstrumentFactory struct {
	settings Settings
}

// NewInstrumentFactory builds a factory from the given settings.
func NewInstrumentFactory(settings Settings) *InstrumentFactory {
	return &InstrumentFactory{settings: settings}
}

// HistogramRange returns the dynamic range for a histogram of the given
// name, honoring per-metric overrides.
func (f *InstrumentFactory) HistogramRange(name string) DynamicRange {
	if o, ok := f.settings.PerMetric[name]; ok && o.Range != nil {
		return *o.Range
	}
	return f.settings.DefaultHistogramRange
}

// RangeSamplerRange returns the dynamic range for a range sampler of the
// given name, honoring per-metric overrides.
func (f *InstrumentFactory) RangeSamplerRange(name string) DynamicRange {
	if o, ok := f.settings.PerMetric[name]; ok && o.Range != nil {
		return *o.Range
	}
	return f.settings.DefaultRangeSamplerRange
}

// SampleInterval returns the sampling interval for a range sampler of
// the given name, honoring per-metric overrides.
func (f *InstrumentFactory) SampleInterval(name string) time.Duration {
	if o, ok := f.settings.PerMetric[name]; ok && o.SampleInterval > 0 {
		return o.SampleInterval
	}
	return f.settings.DefaultSampleInterval
}

// factoryCell is the single shared, swappable instrument-factory cell.
// Instruments hold the cell by reference, never the factory by value, so
// a reconfigure (one atomic pointer swap) is observed by every live
// instrument without recreation.
type factoryCell struct {
	ptr atomic.Pointer[InstrumentFactory]
}

func (c *factoryCell) load() *InstrumentFactory {
	return c.ptr.Load()
}

func (c *factoryCell) store(f *InstrumentFactory) {
	c.ptr.Store(f)
}

// buildCounter constructs a counter instrument.
func (f *InstrumentFactory) buildCounter() *Counter {
	return &Counter{}
}

// buildGauge constructs a gauge instrument.
func (f *InstrumentFactory) buildGauge() *Gauge {
	return &Gauge{}
}

// buildHistogram constructs a histogram instrument. explicitRange may be
// nil, in which case the instrument reads the current default through
// the cell and re-resolves it on every harvest cycle.
func (f *InstrumentFactory) buildHistogram(name string, cell *factoryCell, explicitRange *DynamicRange) *Histogram {
	return newHistogram(name, cell, explicitRange)
}

// buildRangeSampler constructs a range sampler instrument and registers
// its periodic sample with the scheduler.
func (f *InstrumentFactory) buildRangeSampler(name string, cell *factoryCell, explicitRange *DynamicRange,
	sampleInterval time.Duration, scheduler core.Scheduler) *RangeSampler {
	if sampleInterval <= 0 {
		sampleInterval = f.SampleInterval(name)
	}
	return newRangeSampler(name, cell, explicitRange, sampleInterval, scheduler)
}
