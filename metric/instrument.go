package metric

import "fmt"

// InstrumentType is the fixed category bound to a metric name at first
// creation. It is immutable for the remainder of the registry's life.
//
// Timer is deliberately absent: a timer is a Histogram over a time unit
// and does not introduce a distinct instrument type.
type InstrumentType int

const (
	InstrumentTypeCounter InstrumentType = iota
	InstrumentTypeGauge
	InstrumentTypeHistogram
	InstrumentTypeRangeSampler
)

// String returns the instrument type name for diagnostics and errors.
func (t InstrumentType) String() string {
	switch t {
	case InstrumentTypeCounter:
		return "counter"
	case InstrumentTypeGauge:
		return "gauge"
	case InstrumentTypeHistogram:
		return "histogram"
	case InstrumentTypeRangeSampler:
		return "range-sampler"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// MarshalJSON renders the type name so introspection surfaces stay
// readable.
func (t InstrumentType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// DynamicRange is the precision/range configuration governing a
// distribution-valued instrument's internal resolution. The zero value
// is not usable; use DefaultDynamicRange or construct all three fields.
type DynamicRange struct {
	// LowestDiscernible is the smallest value the instrument can tell
	// apart from zero. Must be >= 1.
	LowestDiscernible int64

	// HighestTrackable is the largest recordable value. Values above it
	// are clamped at recording time.
	HighestTrackable int64

	// SignificantDigits is the number of significant decimal digits of
	// precision maintained across the range (1..5).
	SignificantDigits int
}

// DefaultDynamicRange covers 1 nanosecond to one hour with two
// significant digits, a reasonable default for latency-style data.
func DefaultDynamicRange() DynamicRange {
	return DynamicRange{
		LowestDiscernible: 1,
		HighestTrackable:  3_600_000_000_000,
		SignificantDigits: 2,
	}
}

// validate reports whether the range can back an HDR histogram.
func (r DynamicRange) validate() error {
	if r.LowestDiscernible < 1 {
		return fmt.Errorf("lowest discernible value must be >= 1, got %d", r.LowestDiscernible)
	}
	if r.HighestTrackable < 2*r.LowestDiscernible {
		return fmt.Errorf("highest trackable value must be at least twice the lowest discernible value, got %d", r.HighestTrackable)
	}
	if r.SignificantDigits < 1 || r.SignificantDigits > 5 {
		return fmt.Errorf("significant digits must be between 1 and 5, got %d", r.SignificantDigits)
	}
	return nil
}
