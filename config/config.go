// Package config loads and validates pulse configuration. The registry
// itself only ever sees metric.Settings; this package is the outer
// layer that produces them from YAML files, environment variables, and
// profile presets.
package config

import (
	"fmt"
	"time"

	"github.com/itsneelabh/pulse/core"
	"github.com/itsneelabh/pulse/metric"
)

// Config configures the pulse library end to end: the registry's
// instrument policy, the reporting cadence, and the exporter blocks.
type Config struct {
	ServiceName string `yaml:"service_name"`

	Logging   LoggingConfig   `yaml:"logging"`
	Registry  RegistryConfig  `yaml:"registry"`
	Reporting ReportingConfig `yaml:"reporting"`
	Exporters ExportersConfig `yaml:"exporters"`
}

// LoggingConfig controls the library's own log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // DEBUG, INFO, WARN, ERROR
	Format string `yaml:"format"` // text or json
}

// RegistryConfig is the YAML shape of metric.Settings.
type RegistryConfig struct {
	HistogramRange    RangeConfig               `yaml:"histogram_range"`
	RangeSamplerRange RangeConfig               `yaml:"range_sampler_range"`
	SampleInterval    Duration                  `yaml:"sample_interval"`
	Metrics           map[string]OverrideConfig `yaml:"metrics"`
}

// RangeConfig is the YAML shape of metric.DynamicRange.
type RangeConfig struct {
	LowestDiscernible int64 `yaml:"lowest_discernible"`
	HighestTrackable  int64 `yaml:"highest_trackable"`
	SignificantDigits int   `yaml:"significant_digits"`
}

// OverrideConfig adjusts factory defaults for one metric name.
type OverrideConfig struct {
	Range          *RangeConfig `yaml:"range"`
	SampleInterval Duration     `yaml:"sample_interval"`
}

// ReportingConfig controls the snapshot-and-report loop.
type ReportingConfig struct {
	Interval Duration `yaml:"interval"`
}

// ExportersConfig enables and configures the bundled reporters.
type ExportersConfig struct {
	Prometheus PrometheusConfig `yaml:"prometheus"`
	OTel       OTelConfig       `yaml:"otel"`
	Redis      RedisConfig      `yaml:"redis"`
}

// PrometheusConfig configures the Prometheus collector bridge.
type PrometheusConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// OTelConfig configures the OpenTelemetry bridge.
type OTelConfig struct {
	Enabled   bool   `yaml:"enabled"`
	MeterName string `yaml:"meter_name"`
}

// RedisConfig configures the Redis snapshot publisher.
type RedisConfig struct {
	Enabled bool     `yaml:"enabled"`
	Addr    string   `yaml:"addr"`
	Channel string   `yaml:"channel"`
	KeyTTL  Duration `yaml:"key_ttl"`
}

// Duration wraps time.Duration so YAML can carry values like "200ms".
type Duration time.Duration

// UnmarshalYAML parses duration strings with time.ParseDuration.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in time.Duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Profile represents a pre-configured pulse profile
type Profile string

const (
	ProfileDevelopment Profile = "development"
	ProfileProduction  Profile = "production"
)

// Profiles contains pre-configured pulse profiles
var Profiles = map[Profile]Config{
	ProfileDevelopment: {
		Logging: LoggingConfig{Level: "DEBUG", Format: "text"},
		Registry: RegistryConfig{
			SampleInterval: Duration(100 * time.Millisecond),
		},
		Reporting: ReportingConfig{Interval: Duration(5 * time.Second)},
	},
	ProfileProduction: {
		Logging: LoggingConfig{Level: "INFO", Format: "json"},
		Registry: RegistryConfig{
			SampleInterval: Duration(200 * time.Millisecond),
		},
		Reporting: ReportingConfig{Interval: Duration(60 * time.Second)},
	},
}

// UseProfile returns a configuration based on a profile name
func UseProfile(profile Profile) Config {
	if config, ok := Profiles[profile]; ok {
		return config
	}
	// Default to development profile
	return Profiles[ProfileDevelopment]
}

// WithOverrides applies non-zero values from overrides onto c.
func (c Config) WithOverrides(overrides Config) Config {
	if overrides.ServiceName != "" {
		c.ServiceName = overrides.ServiceName
	}
	if overrides.Logging.Level != "" {
		c.Logging.Level = overrides.Logging.Level
	}
	if overrides.Logging.Format != "" {
		c.Logging.Format = overrides.Logging.Format
	}
	if overrides.Registry.SampleInterval > 0 {
		c.Registry.SampleInterval = overrides.Registry.SampleInterval
	}
	if !overrides.Registry.HistogramRange.isZero() {
		c.Registry.HistogramRange = overrides.Registry.HistogramRange
	}
	if !overrides.Registry.RangeSamplerRange.isZero() {
		c.Registry.RangeSamplerRange = overrides.Registry.RangeSamplerRange
	}
	if overrides.Registry.Metrics != nil {
		c.Registry.Metrics = overrides.Registry.Metrics
	}
	if overrides.Reporting.Interval > 0 {
		c.Reporting.Interval = overrides.Reporting.Interval
	}
	if overrides.Exporters.Prometheus.Enabled {
		c.Exporters.Prometheus = overrides.Exporters.Prometheus
	}
	if overrides.Exporters.OTel.Enabled {
		c.Exporters.OTel = overrides.Exporters.OTel
	}
	if overrides.Exporters.Redis.Enabled {
		c.Exporters.Redis = overrides.Exporters.Redis
	}
	return c
}

func (r RangeConfig) isZero() bool {
	return r == RangeConfig{}
}

func (r RangeConfig) toDynamicRange() metric.DynamicRange {
	return metric.DynamicRange{
		LowestDiscernible: r.LowestDiscernible,
		HighestTrackable:  r.HighestTrackable,
		SignificantDigits: r.SignificantDigits,
	}
}

// Settings bridges this configuration to the registry's instrument
// policy. Unset ranges fall back to metric.DefaultSettings; this is the
// token handed to Registry.Reconfigure on a live reload.
func (c Config) Settings() metric.Settings {
	s := metric.DefaultSettings()
	if !c.Registry.HistogramRange.isZero() {
		s.DefaultHistogramRange = c.Registry.HistogramRange.toDynamicRange()
	}
	if !c.Registry.RangeSamplerRange.isZero() {
		s.DefaultRangeSamplerRange = c.Registry.RangeSamplerRange.toDynamicRange()
	}
	if c.Registry.SampleInterval > 0 {
		s.DefaultSampleInterval = c.Registry.SampleInterval.Std()
	}
	if len(c.Registry.Metrics) > 0 {
		s.PerMetric = make(map[string]metric.InstrumentOverrides, len(c.Registry.Metrics))
		for name, o := range c.Registry.Metrics {
			override := metric.InstrumentOverrides{
				SampleInterval: o.SampleInterval.Std(),
			}
			if o.Range != nil {
				dr := o.Range.toDynamicRange()
				override.Range = &dr
			}
			s.PerMetric[name] = override
		}
	}
	return s
}

// Validate checks values that the YAML schema alone cannot enforce.
func (c Config) Validate() error {
	if c.Reporting.Interval < 0 {
		return fmt.Errorf("%w: reporting interval must not be negative", core.ErrInvalidConfiguration)
	}
	if c.Registry.SampleInterval < 0 {
		return fmt.Errorf("%w: sample interval must not be negative", core.ErrInvalidConfiguration)
	}
	for name, o := range c.Registry.Metrics {
		if o.Range != nil {
			r := o.Range.toDynamicRange()
			if r.LowestDiscernible < 1 || r.HighestTrackable < 2*r.LowestDiscernible ||
				r.SignificantDigits < 1 || r.SignificantDigits > 5 {
				return fmt.Errorf("%w: invalid range override for metric %q", core.ErrInvalidConfiguration, name)
			}
		}
	}
	if c.Exporters.Redis.Enabled && c.Exporters.Redis.Addr == "" {
		return fmt.Errorf("%w: redis exporter enabled without addr", core.ErrMissingConfiguration)
	}
	return nil
}
