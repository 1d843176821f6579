package report

import (
	"context"
	"sync"
	"time"

	"github.com/itsneelabh/pulse/core"
	"github.com/itsneelabh/pulse/metric"
)

// Runner owns the periodic harvest. Each tick takes one registry
// snapshot and delivers it to every reporter; per-reporter failures are
// rate-limit logged and never stop the loop.
type Runner struct {
	registry  *metric.Registry
	scheduler core.Scheduler
	logger    core.Logger

	// errorThrottle keys by reporter name: a down backend gets one log
	// line per window without drowning out other reporters' failures
	errorThrottle *core.LogThrottle

	reportTimeout time.Duration

	mu        sync.Mutex
	reporters []Reporter
	cancel    core.Cancelable
}

// NewRunner creates a runner over the given registry. The scheduler
// drives the tick; nil defaults silence logging and disable ticking.
func NewRunner(registry *metric.Registry, scheduler core.Scheduler, logger core.Logger) *Runner {
	if scheduler == nil {
		scheduler = &core.NoOpScheduler{}
	}
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Runner{
		registry:      registry,
		scheduler:     scheduler,
		logger:        logger,
		errorThrottle: core.NewLogThrottle(1 * time.Second),
		reportTimeout: 10 * time.Second,
	}
}

// Register adds a reporter. Safe to call while the runner is ticking;
// the reporter joins at the next tick.
func (r *Runner) Register(reporter Reporter) {
	r.mu.Lock()
	r.reporters = append(r.reporters, reporter)
	r.mu.Unlock()

	r.logger.Info("Reporter registered", map[string]interface{}{
		"reporter": reporter.Name(),
	})
}

// Start begins ticking every interval. Starting an already started
// runner replaces its cadence.
func (r *Runner) Start(interval time.Duration) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel.Cancel()
	}
	r.cancel = r.scheduler.Schedule(interval, r.tick)
	r.mu.Unlock()

	r.logger.Info("Reporting started", map[string]interface{}{
		"interval": interval.String(),
	})
}

// Reconfigure forwards a new instrument policy to the registry.
func (r *Runner) Reconfigure(settings metric.Settings) error {
	return r.registry.Reconfigure(settings)
}

// Stop cancels the tick and flushes one final snapshot so the last
// period's data is not lost. The context bounds the flush.
func (r *Runner) Stop(ctx context.Context) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel.Cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.deliver(ctx, r.registry.Snapshot())

	r.logger.Info("Reporting stopped", nil)
}

// tick runs on the scheduler's goroutine.
func (r *Runner) tick() {
	ctx, cancelFn := context.WithTimeout(context.Background(), r.reportTimeout)
	defer cancelFn()
	r.deliver(ctx, r.registry.Snapshot())
}

func (r *Runner) deliver(ctx context.Context, snapshot *metric.Snapshot) {
	r.mu.Lock()
	reporters := make([]Reporter, len(r.reporters))
	copy(reporters, r.reporters)
	r.mu.Unlock()

	for _, reporter := range reporters {
		if err := reporter.ReportSnapshot(ctx, snapshot); err != nil {
			if r.errorThrottle.Allow(reporter.Name()) {
				r.logger.Error("Reporter failed to deliver snapshot", map[string]interface{}{
					"reporter": reporter.Name(),
					"snapshot": snapshot.ID,
					"error":    err.Error(),
				})
			}
		}
	}
}
