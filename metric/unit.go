package metric

// Dimension describes what a measurement unit quantifies.
type Dimension string

const (
	DimensionNone        Dimension = "none"
	DimensionTime        Dimension = "time"
	DimensionInformation Dimension = "information"
)

// Magnitude is a named scale within a dimension. ScaleFactor is relative
// to the dimension's base magnitude (nanoseconds for time, bytes for
// information), which allows exporters to convert between magnitudes.
type Magnitude struct {
	Name        string  `json:"name"`
	ScaleFactor float64 `json:"scale_factor"`
}

// MeasurementUnit is a semantic unit attached to a metric at first
// creation. Later creation calls with a different unit do not change it.
type MeasurementUnit struct {
	Dimension Dimension `json:"dimension"`
	Magnitude Magnitude `json:"magnitude"`
}

// String returns a short human-readable form used in diagnostics and
// status descriptors.
func (u MeasurementUnit) String() string {
	if u.Dimension == DimensionNone {
		return "none"
	}
	return u.Magnitude.Name
}

// Predefined measurement units.
var (
	UnitNone = MeasurementUnit{Dimension: DimensionNone, Magnitude: Magnitude{Name: "none", ScaleFactor: 1}}

	UnitNanoseconds  = MeasurementUnit{Dimension: DimensionTime, Magnitude: Magnitude{Name: "nanoseconds", ScaleFactor: 1}}
	UnitMicroseconds = MeasurementUnit{Dimension: DimensionTime, Magnitude: Magnitude{Name: "microseconds", ScaleFactor: 1e3}}
	UnitMilliseconds = MeasurementUnit{Dimension: DimensionTime, Magnitude: Magnitude{Name: "milliseconds", ScaleFactor: 1e6}}
	UnitSeconds      = MeasurementUnit{Dimension: DimensionTime, Magnitude: Magnitude{Name: "seconds", ScaleFactor: 1e9}}

	UnitBytes     = MeasurementUnit{Dimension: DimensionInformation, Magnitude: Magnitude{Name: "bytes", ScaleFactor: 1}}
	UnitKilobytes = MeasurementUnit{Dimension: DimensionInformation, Magnitude: Magnitude{Name: "kilobytes", ScaleFactor: 1024}}
	UnitMegabytes = MeasurementUnit{Dimension: DimensionInformation, Magnitude: Magnitude{Name: "megabytes", ScaleFactor: 1024 * 1024}}
)
