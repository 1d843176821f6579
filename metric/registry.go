package metric

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itsneelabh/pulse/core"
)

// Registry is the central mapping from metric names to logical metrics.
// It mediates creation of per-metric instrument incarnations, enforces
// type/unit consistency, and assembles point-in-time snapshots for
// reporters.
//
// Concurrency protocol:
//   - Creation calls for different names proceed independently; calls
//     for the same new name are serialized among themselves through a
//     per-key mutex, so exactly one construction happens and every
//     caller receives the winning instance.
//   - Reconfigure and Snapshot are mutually exclusive with each other
//     (a snapshot never straddles a factory swap) but never block
//     creation calls.
//   - The factory cell is a single atomic pointer that live instruments
//     read through, so reconfiguration reaches them without recreation.
type Registry struct {
	scheduler core.Scheduler
	logger    core.Logger

	metrics sync.Map // map[string]*Metric
	inits   sync.Map // map[string]*sync.Mutex, per-key construction locks

	factory factoryCell

	// structuralMu serializes Reconfigure and Snapshot only. Creation
	// calls never take it, keeping the common path lock-light.
	structuralMu sync.Mutex
	periodStart  time.Time // guarded by structuralMu
}

// NewRegistry creates a registry with the given instrument-construction
// policy. The scheduler is threaded through to range-sampler
// incarnations; passing nil disables sampling (core.NoOpScheduler).
// Passing a nil logger silences warnings.
func NewRegistry(settings Settings, scheduler core.Scheduler, logger core.Logger) (*Registry, error) {
	if err := settings.validate(); err != nil {
		return nil, core.NewMetricError("registry.New", "",
			fmt.Errorf("%w: %v", core.ErrInvalidConfiguration, err))
	}
	if scheduler == nil {
		scheduler = &core.NoOpScheduler{}
	}
	if logger == nil {
		logger = &core.NoOpLogger{}
	}

	r := &Registry{
		scheduler:   scheduler,
		logger:      logger,
		periodStart: time.Now(),
	}
	r.factory.store(NewInstrumentFactory(settings))
	return r, nil
}

// Counter returns the counter metric registered under name, creating it
// on first request. Returns an error if name is already bound to a
// different instrument type.
func (r *Registry) Counter(name string, unit MeasurementUnit) (*CounterMetric, error) {
	m, err := r.metricFor("registry.Counter", name, InstrumentTypeCounter, unit, nil, 0)
	if err != nil {
		return nil, err
	}
	return &CounterMetric{m}, nil
}

// Gauge returns the gauge metric registered under name, creating it on
// first request.
func (r *Registry) Gauge(name string, unit MeasurementUnit) (*GaugeMetric, error) {
	m, err := r.metricFor("registry.Gauge", name, InstrumentTypeGauge, unit, nil, 0)
	if err != nil {
		return nil, err
	}
	return &GaugeMetric{m}, nil
}

// Histogram returns the histogram metric registered under name, creating
// it on first request. A nil dynamicRange defers to the active factory
// policy, re-resolved after every harvest.
func (r *Registry) Histogram(name string, unit MeasurementUnit, dynamicRange *DynamicRange) (*HistogramMetric, error) {
	if err := r.checkExplicitRange("registry.Histogram", name, dynamicRange); err != nil {
		return nil, err
	}
	m, err := r.metricFor("registry.Histogram", name, InstrumentTypeHistogram, unit, dynamicRange, 0)
	if err != nil {
		return nil, err
	}
	return &HistogramMetric{m}, nil
}

// RangeSampler returns the range-sampler metric registered under name,
// creating it on first request. A nil dynamicRange or non-positive
// sampleInterval defers to the active factory policy.
func (r *Registry) RangeSampler(name string, unit MeasurementUnit, dynamicRange *DynamicRange,
	sampleInterval time.Duration) (*RangeSamplerMetric, error) {
	if err := r.checkExplicitRange("registry.RangeSampler", name, dynamicRange); err != nil {
		return nil, err
	}
	m, err := r.metricFor("registry.RangeSampler", name, InstrumentTypeRangeSampler, unit, dynamicRange, sampleInterval)
	if err != nil {
		return nil, err
	}
	return &RangeSamplerMetric{m}, nil
}

// Timer returns a timer for name. A timer is a histogram over
// nanoseconds; it shares the name binding with Histogram and the
// registry reports it as a Histogram.
func (r *Registry) Timer(name string, dynamicRange *DynamicRange) (*Timer, error) {
	h, err := r.Histogram(name, UnitNanoseconds, dynamicRange)
	if err != nil {
		return nil, err
	}
	return &Timer{h}, nil
}

func (r *Registry) checkExplicitRange(op, name string, dynamicRange *DynamicRange) error {
	if dynamicRange == nil {
		return nil
	}
	if err := dynamicRange.validate(); err != nil {
		return core.NewMetricError(op, name,
			fmt.Errorf("%w: %v", core.ErrInvalidConfiguration, err))
	}
	return nil
}

// metricFor implements the creation-or-lookup protocol shared by all
// typed creation methods: a lock-free fast path, a per-key construction
// mutex for new names, and type/unit validation for existing ones.
func (r *Registry) metricFor(op, name string, typ InstrumentType, unit MeasurementUnit,
	explicitRange *DynamicRange, sampleInterval time.Duration) (*Metric, error) {
	// Fast read path: no locks beyond what sync.Map provides.
	if v, ok := r.metrics.Load(name); ok {
		return r.validateExisting(op, v.(*Metric), typ, unit)
	}

	// Per-key mutex: only concurrent requests for the same new name
	// contend here, and construction never runs under a registry-wide
	// lock.
	muI, _ := r.inits.LoadOrStore(name, &sync.Mutex{})
	mu := muI.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	// Re-check after acquiring the per-key mutex: a concurrent caller
	// may have won the construction race.
	if v, ok := r.metrics.Load(name); ok {
		return r.validateExisting(op, v.(*Metric), typ, unit)
	}

	m := newMetric(name, typ, unit, &r.factory, r.scheduler, explicitRange, sampleInterval)
	r.metrics.Store(name, m)
	// The per-key mutex is only needed while the name is unregistered;
	// dropping it lets the map shrink back. Goroutines already holding
	// the pointer keep using it safely.
	r.inits.Delete(name)

	r.logger.Debug("Registered metric", map[string]interface{}{
		"metric": name,
		"type":   typ.String(),
		"unit":   unit.String(),
	})
	return m, nil
}

// validateExisting enforces the name binding invariants: a type
// conflict aborts the call, a unit conflict keeps the original unit and
// emits a warning.
func (r *Registry) validateExisting(op string, existing *Metric, typ InstrumentType, unit MeasurementUnit) (*Metric, error) {
	if existing.instrumentType != typ {
		return nil, core.NewMetricError(op, existing.name,
			fmt.Errorf("%w: registered as %s, requested as %s",
				core.ErrInstrumentTypeMismatch, existing.instrumentType, typ))
	}
	if existing.unit != unit {
		r.logger.Warn("Ignoring mismatched unit on existing metric", map[string]interface{}{
			"metric":        existing.name,
			"retained_unit": existing.unit.String(),
			"ignored_unit":  unit.String(),
		})
	}
	return existing, nil
}

// Reconfigure replaces the active instrument-construction policy with a
// single atomic factory swap. Existing instruments observe the new
// policy prospectively through the shared cell; nothing is recreated.
// Mutually exclusive with Snapshot so a harvest never observes a
// half-updated factory.
func (r *Registry) Reconfigure(settings Settings) error {
	if err := settings.validate(); err != nil {
		return core.NewMetricError("registry.Reconfigure", "",
			fmt.Errorf("%w: %v", core.ErrInvalidConfiguration, err))
	}

	r.structuralMu.Lock()
	r.factory.store(NewInstrumentFactory(settings))
	r.structuralMu.Unlock()

	r.logger.Info("Registry reconfigured", map[string]interface{}{
		"sample_interval": settings.DefaultSampleInterval.String(),
		"overrides":       len(settings.PerMetric),
	})
	return nil
}

// Snapshot harvests every incarnation of every registered metric into
// an immutable snapshot. Counter and distribution state resets so the
// next snapshot covers a fresh period; gauges are read without reset.
//
// A metric whose instrument type is not in the known set is logged and
// skipped — a forward-compatibility gap, not corruption — and
// harvesting continues for all other metrics.
func (r *Registry) Snapshot() *Snapshot {
	r.structuralMu.Lock()
	defer r.structuralMu.Unlock()

	now := time.Now()
	sn := &Snapshot{
		ID:   uuid.NewString(),
		From: r.periodStart,
		To:   now,
	}
	r.periodStart = now

	r.metrics.Range(func(_, v interface{}) bool {
		m := v.(*Metric)
		switch m.instrumentType {
		case InstrumentTypeCounter:
			sn.Counters = append(sn.Counters, m.counterValues(true)...)
		case InstrumentTypeGauge:
			sn.Gauges = append(sn.Gauges, m.gaugeValues()...)
		case InstrumentTypeHistogram:
			sn.Histograms = append(sn.Histograms, m.distributions(true)...)
		case InstrumentTypeRangeSampler:
			sn.RangeSamplers = append(sn.RangeSamplers, m.distributions(true)...)
		default:
			// Forward-compatibility guard: never fatal.
			r.logger.Warn("Skipping metric with unknown instrument type", map[string]interface{}{
				"metric": m.name,
				"type":   m.instrumentType.String(),
				"error":  core.ErrUnknownInstrumentType.Error(),
			})
		}
		return true
	})

	sortSnapshot(sn)
	return sn
}

// sortSnapshot orders each bucket by name then tags. sync.Map iteration
// order is unspecified; sorting keeps snapshots stable for reporters
// and tests.
func sortSnapshot(sn *Snapshot) {
	sort.Slice(sn.Counters, func(i, j int) bool {
		return snapshotLess(sn.Counters[i].Name, sn.Counters[i].Tags, sn.Counters[j].Name, sn.Counters[j].Tags)
	})
	sort.Slice(sn.Gauges, func(i, j int) bool {
		return snapshotLess(sn.Gauges[i].Name, sn.Gauges[i].Tags, sn.Gauges[j].Name, sn.Gauges[j].Tags)
	})
	sort.Slice(sn.Histograms, func(i, j int) bool {
		return snapshotLess(sn.Histograms[i].Name, sn.Histograms[i].Tags, sn.Histograms[j].Name, sn.Histograms[j].Tags)
	})
	sort.Slice(sn.RangeSamplers, func(i, j int) bool {
		return snapshotLess(sn.RangeSamplers[i].Name, sn.RangeSamplers[i].Tags, sn.RangeSamplers[j].Name, sn.RangeSamplers[j].Tags)
	})
}

func snapshotLess(nameA string, tagsA Tags, nameB string, tagsB Tags) bool {
	if nameA != nameB {
		return nameA < nameB
	}
	return tagsA.key() < tagsB.key()
}
