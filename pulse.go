// Package pulse is a metrics library built around a central registry:
// named metrics with tagged incarnations, live reconfiguration, and a
// periodic snapshot pipeline fanning out to pluggable reporters.
//
// The subpackages are usable on their own; this package is the
// batteries-included assembly that wires a registry, a scheduler, a
// reporting runner, and the configured exporters from one Config.
package pulse

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/itsneelabh/pulse/config"
	"github.com/itsneelabh/pulse/core"
	"github.com/itsneelabh/pulse/export/otelbridge"
	"github.com/itsneelabh/pulse/export/prom"
	"github.com/itsneelabh/pulse/export/redispub"
	"github.com/itsneelabh/pulse/metric"
	"github.com/itsneelabh/pulse/report"
	"github.com/itsneelabh/pulse/sched"
)

// Pulse bundles a configured registry and its reporting pipeline.
type Pulse struct {
	Registry *metric.Registry
	Runner   *report.Runner

	// Prometheus is non-nil when the Prometheus exporter is enabled; it
	// is registered with the default registerer during New.
	Prometheus *prom.Collector

	cfg       config.Config
	logger    *core.ProductionLogger
	scheduler *sched.TickerScheduler
	redis     *redispub.Publisher
}

// New assembles a registry and reporting runner from cfg. Exporters are
// created and registered according to the config's exporter blocks; the
// reporting loop does not tick until Start is called.
func New(ctx context.Context, cfg config.Config) (*Pulse, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := core.NewProductionLogger("pulse")
	if cfg.Logging.Level != "" {
		logger.SetLevel(cfg.Logging.Level)
	}

	scheduler := sched.NewTickerScheduler()
	registry, err := metric.NewRegistry(cfg.Settings(), scheduler, logger)
	if err != nil {
		scheduler.Stop()
		return nil, err
	}

	p := &Pulse{
		Registry:  registry,
		Runner:    report.NewRunner(registry, scheduler, logger),
		cfg:       cfg,
		logger:    logger,
		scheduler: scheduler,
	}

	if cfg.Exporters.Prometheus.Enabled {
		p.Prometheus = prom.NewCollector(cfg.Exporters.Prometheus.Namespace)
		if err := prometheus.Register(p.Prometheus); err != nil {
			scheduler.Stop()
			return nil, fmt.Errorf("register prometheus collector: %w", err)
		}
		p.Runner.Register(p.Prometheus)
	}

	if cfg.Exporters.OTel.Enabled {
		p.Runner.Register(otelbridge.NewBridge(cfg.Exporters.OTel.MeterName, nil))
	}

	if cfg.Exporters.Redis.Enabled {
		pub, err := redispub.NewPublisher(ctx, redispub.Options{
			Addr:    cfg.Exporters.Redis.Addr,
			Channel: cfg.Exporters.Redis.Channel,
			KeyTTL:  cfg.Exporters.Redis.KeyTTL.Std(),
		})
		if err != nil {
			scheduler.Stop()
			if p.Prometheus != nil {
				prometheus.Unregister(p.Prometheus)
			}
			return nil, err
		}
		p.redis = pub
		p.Runner.Register(pub)
	}

	return p, nil
}

// Start begins the reporting loop at the configured interval. With no
// interval configured, nothing ticks and snapshots are caller-driven.
func (p *Pulse) Start() {
	if interval := p.cfg.Reporting.Interval.Std(); interval > 0 {
		p.Runner.Start(interval)
	}
}

// Reconfigure applies a new configuration's instrument policy to the
// live registry. Existing instruments pick it up prospectively.
func (p *Pulse) Reconfigure(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return p.Runner.Reconfigure(cfg.Settings())
}

// Stop flushes a final snapshot, stops the reporting loop and the
// scheduler, and releases exporter connections.
func (p *Pulse) Stop(ctx context.Context) error {
	p.Runner.Stop(ctx)
	p.scheduler.Stop()
	if p.Prometheus != nil {
		prometheus.Unregister(p.Prometheus)
	}
	if p.redis != nil {
		return p.redis.Close()
	}
	return nil
}
