// Package metric is the core of pulse: a concurrency-safe registry that
// maps each stable metric name to exactly one logical metric, mediates
// creation of per-metric instrument incarnations (counters, gauges,
// histograms, range samplers), and produces consistent point-in-time
// snapshots for reporters.
//
// # Creation and lookup
//
// Callers request typed handles by name:
//
//	reg, _ := metric.NewRegistry(metric.DefaultSettings(), scheduler, logger)
//	requests, _ := reg.Counter("http.requests", metric.UnitNone)
//	requests.WithTags(metric.Tags{"route": "/users"}).Increment()
//
// The first request for a name binds its instrument type and unit
// permanently. A later request under the same name with a different
// type fails; a different unit is ignored with a warning and the
// original unit is kept.
//
// # Reconfiguration
//
// Reconfigure swaps the instrument-construction policy atomically.
// Live instruments read the policy through a shared cell, so defaults
// such as histogram dynamic ranges change prospectively without any
// instrument being recreated.
//
// # Snapshots
//
// Snapshot harvests every incarnation into four sequences (histogram
// distributions, range-sampler distributions, gauge values, counter
// values). Counters and distributions reset on harvest so each snapshot
// covers one period; gauges report their current value.
package metric
