package metric

import "time"

// Snapshot is an immutable point-in-time harvest of all registered
// metrics, assembled by Registry.Snapshot. Its contents reflect the
// registry state at the moment of the call, not a live view.
type Snapshot struct {
	// ID uniquely identifies this harvest for downstream correlation.
	ID string `json:"id"`

	// From and To bound the period this snapshot covers: From is the
	// previous harvest (or registry creation), To is the harvest instant.
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Histograms    []DistributionSnapshot `json:"histograms"`
	RangeSamplers []DistributionSnapshot `json:"range_samplers"`
	Gauges        []GaugeValueSnapshot   `json:"gauges"`
	Counters      []CounterValueSnapshot `json:"counters"`
}

// CounterValueSnapshot is the harvested value of one counter
// incarnation: the count accumulated during the snapshot period.
type CounterValueSnapshot struct {
	Name  string          `json:"name"`
	Tags  Tags            `json:"tags,omitempty"`
	Unit  MeasurementUnit `json:"unit"`
	Value int64           `json:"value"`
}

// GaugeValueSnapshot is the current value of one gauge incarnation.
type GaugeValueSnapshot struct {
	Name  string          `json:"name"`
	Tags  Tags            `json:"tags,omitempty"`
	Unit  MeasurementUnit `json:"unit"`
	Value float64         `json:"value"`
}

// DistributionSnapshot is the harvested distribution of one histogram
// or range-sampler incarnation over the snapshot period.
type DistributionSnapshot struct {
	Name         string          `json:"name"`
	Tags         Tags            `json:"tags,omitempty"`
	Unit         MeasurementUnit `json:"unit"`
	Distribution Distribution    `json:"distribution"`
}

// MetricDescriptor identifies one incarnation for introspection:
// Registry.Status returns one descriptor per incarnation.
type MetricDescriptor struct {
	Name           string          `json:"name"`
	Tags           Tags            `json:"tags,omitempty"`
	Unit           MeasurementUnit `json:"unit"`
	InstrumentType InstrumentType  `json:"instrument_type"`
}
