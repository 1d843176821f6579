// Package sched provides the periodic-execution facility consumed by
// range samplers and the reporting runner.
package sched

import (
	"sync"
	"time"

	"github.com/itsneelabh/pulse/core"
)

// TickerScheduler implements core.Scheduler with one goroutine per
// schedule. It is the default scheduler for production use; tests
// usually drive instruments with a manual scheduler instead.
type TickerScheduler struct {
	mu      sync.Mutex
	tasks   map[*tickerTask]struct{}
	stopped bool
}

// NewTickerScheduler creates a scheduler with no active schedules.
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{
		tasks: make(map[*tickerTask]struct{}),
	}
}

// Schedule runs fn every interval until the returned Cancelable is
// canceled or the scheduler is stopped. A non-positive interval returns
// an already-canceled handle.
func (s *TickerScheduler) Schedule(interval time.Duration, fn func()) core.Cancelable {
	if interval <= 0 || fn == nil {
		return canceledTask{}
	}

	t := &tickerTask{
		scheduler: s,
		stopChan:  make(chan struct{}),
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return canceledTask{}
	}
	s.tasks[t] = struct{}{}
	s.mu.Unlock()

	go t.run(interval, fn)
	return t
}

// Stop cancels every outstanding schedule. The scheduler accepts no new
// schedules afterwards.
func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	tasks := make([]*tickerTask, 0, len(s.tasks))
	for t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
	}
}

func (s *TickerScheduler) remove(t *tickerTask) {
	s.mu.Lock()
	delete(s.tasks, t)
	s.mu.Unlock()
}

type tickerTask struct {
	scheduler *TickerScheduler
	stopChan  chan struct{}
	stopped   sync.Once
}

func (t *tickerTask) run(interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn()
		case <-t.stopChan:
			return
		}
	}
}

// Cancel stops the task. Idempotent.
func (t *tickerTask) Cancel() {
	t.stopped.Do(func() {
		close(t.stopChan)
		t.scheduler.remove(t)
	})
}

type canceledTask struct{}

func (canceledTask) Cancel() {}
