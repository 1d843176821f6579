package metric

import (
	"math"
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram records a distribution of int64 measurements in an HDR
// histogram whose resolution is governed by a DynamicRange. Methods are
// safe for concurrent use.
//
// A histogram created without an explicit range resolves the default
// through the registry's shared factory cell, and re-resolves it after
// every snapshot-and-reset harvest. A Reconfigure therefore changes the
// range of existing default-ranged histograms prospectively, without
// anyone recreating them.
type Histogram struct {
	name          string
	explicitRange *DynamicRange
	resolveRange  func() DynamicRange

	mu     sync.Mutex
	active DynamicRange
	hdr    *hdrhistogram.Histogram
}

func newHistogram(name string, cell *factoryCell, explicitRange *DynamicRange) *Histogram {
	return newHistogramWithResolver(name, explicitRange, func() DynamicRange {
		return cell.load().HistogramRange(name)
	})
}

func newHistogramWithResolver(name string, explicitRange *DynamicRange, resolve func() DynamicRange) *Histogram {
	h := &Histogram{
		name:          name,
		explicitRange: explicitRange,
		resolveRange:  resolve,
	}
	if explicitRange != nil {
		h.active = *explicitRange
	} else {
		h.active = resolve()
	}
	h.hdr = hdrFor(h.active)
	return h
}

func hdrFor(r DynamicRange) *hdrhistogram.Histogram {
	return hdrhistogram.New(r.LowestDiscernible, r.HighestTrackable, r.SignificantDigits)
}

// Record adds a single measurement.
func (h *Histogram) Record(value int64) {
	h.RecordN(value, 1)
}

// RecordN adds count occurrences of value. Values outside the dynamic
// range are clamped rather than dropped.
func (h *Histogram) RecordN(value, count int64) {
	if count <= 0 {
		return
	}
	if value < 0 {
		value = 0
	}
	h.mu.Lock()
	if value > h.active.HighestTrackable {
		value = h.active.HighestTrackable
	}
	_ = h.hdr.RecordValues(value, count)
	h.mu.Unlock()
}

// snapshot harvests the current distribution. When reset is true the
// backing histogram restarts empty and, for default-ranged instruments,
// adopts the factory cell's current default range.
func (h *Histogram) snapshot(reset bool) Distribution {
	h.mu.Lock()
	defer h.mu.Unlock()

	d := distributionFromHdr(h.hdr)
	if reset {
		h.hdr.Reset()
		if h.explicitRange == nil {
			if r := h.resolveRange(); r != h.active {
				h.active = r
				h.hdr = hdrFor(r)
			}
		}
	}
	return d
}

// dynamicRange returns the range currently backing the histogram.
func (h *Histogram) dynamicRange() DynamicRange {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Distribution is an immutable harvest of a distribution-valued
// instrument. The zero value represents an empty period.
type Distribution struct {
	Min   int64    `json:"min"`
	Max   int64    `json:"max"`
	Sum   int64    `json:"sum"`
	Count int64    `json:"count"`
	B     []Bucket `json:"buckets,omitempty"`
}

// Bucket is one populated value bucket of a Distribution. Value is the
// highest equivalent value of the bucket.
type Bucket struct {
	Value int64 `json:"value"`
	Count int64 `json:"count"`
}

// Buckets returns the populated buckets in ascending value order.
func (d Distribution) Buckets() []Bucket {
	return d.B
}

// Mean returns the arithmetic mean of the recorded values.
func (d Distribution) Mean() float64 {
	if d.Count == 0 {
		return 0
	}
	return float64(d.Sum) / float64(d.Count)
}

// Percentile returns the value at the given percentile (0..100).
func (d Distribution) Percentile(p float64) int64 {
	if d.Count == 0 || len(d.B) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	rank := int64(math.Ceil(p / 100 * float64(d.Count)))
	if rank < 1 {
		rank = 1
	}
	var seen int64
	for _, b := range d.B {
		seen += b.Count
		if seen >= rank {
			return b.Value
		}
	}
	return d.B[len(d.B)-1].Value
}

func distributionFromHdr(h *hdrhistogram.Histogram) Distribution {
	count := h.TotalCount()
	if count == 0 {
		return Distribution{}
	}
	d := Distribution{
		Min:   h.Min(),
		Max:   h.Max(),
		Count: count,
		Sum:   int64(h.Mean()*float64(count) + 0.5),
	}
	for _, bar := range h.Distribution() {
		if bar.Count == 0 {
			continue
		}
		d.B = append(d.B, Bucket{Value: bar.To, Count: bar.Count})
	}
	return d
}
