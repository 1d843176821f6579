package metric

import (
	"sync/atomic"
	"time"

	"github.com/itsneelabh/pulse/core"
)

// RangeSampler tracks a value that rises and falls quickly (queue
// depths, in-flight requests) and periodically samples its current,
// minimum, and maximum into an internal distribution. A plain gauge
// read at harvest time would miss the excursions between harvests; the
// sampler captures them.
//
// Sampling runs on the scheduler supplied to the registry at
// construction. Methods are safe for concurrent use.
type RangeSampler struct {
	name  string
	inner *Histogram

	sum atomic.Int64 // current value
	min atomic.Int64 // lowest value observed since the last sample
	max atomic.Int64 // highest value observed since the last sample

	interval time.Duration
	cancel   core.Cancelable
}

func newRangeSampler(name string, cell *factoryCell, explicitRange *DynamicRange,
	interval time.Duration, scheduler core.Scheduler) *RangeSampler {
	rs := &RangeSampler{
		name: name,
		inner: newHistogramWithResolver(name, explicitRange, func() DynamicRange {
			return cell.load().RangeSamplerRange(name)
		}),
		interval: interval,
	}
	rs.cancel = scheduler.Schedule(interval, rs.Sample)
	return rs
}

// Increment raises the tracked value by one.
func (rs *RangeSampler) Increment() {
	rs.Add(1)
}

// Decrement lowers the tracked value by one.
func (rs *RangeSampler) Decrement() {
	rs.Add(-1)
}

// Add adjusts the tracked value by delta, which may be negative.
func (rs *RangeSampler) Add(delta int64) {
	v := rs.sum.Add(delta)
	storeIfLower(&rs.min, v)
	storeIfHigher(&rs.max, v)
}

// Sum returns the tracked value as of now.
func (rs *RangeSampler) Sum() int64 {
	return rs.sum.Load()
}

// SampleInterval returns the interval this sampler was created with.
func (rs *RangeSampler) SampleInterval() time.Duration {
	return rs.interval
}

// Sample records the current, minimum, and maximum observed values into
// the internal distribution and restarts min/max tracking from the
// current value. Normally driven by the scheduler; exposed so callers
// with their own cadence can force a sample.
func (rs *RangeSampler) Sample() {
	current := rs.sum.Load()
	minV := rs.min.Swap(current)
	maxV := rs.max.Swap(current)

	rs.inner.Record(current)
	if minV != current {
		rs.inner.Record(minV)
	}
	if maxV != current {
		rs.inner.Record(maxV)
	}
}

// snapshot takes a final sample so the harvest reflects the value at
// the moment of the call, then harvests the distribution.
func (rs *RangeSampler) snapshot(reset bool) Distribution {
	rs.Sample()
	return rs.inner.snapshot(reset)
}

// stop cancels the periodic sample.
func (rs *RangeSampler) stop() {
	if rs.cancel != nil {
		rs.cancel.Cancel()
	}
}

func storeIfLower(a *atomic.Int64, v int64) {
	for {
		cur := a.Load()
		if v >= cur || a.CompareAndSwap(cur, v) {
			return
		}
	}
}

func storeIfHigher(a *atomic.Int64, v int64) {
	for {
		cur := a.Load()
		if v <= cur || a.CompareAndSwap(cur, v) {
			return
		}
	}
}
