package core

import "time"

// Logger interface - minimal logging interface shared by all pulse packages.
// Implementations must be safe for concurrent use.
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
}

// Scheduler provides periodic execution for instruments that need it
// (range samplers sample their value on a fixed interval).
// The registry receives a Scheduler at construction time and threads it
// through to each instrument incarnation; the registry itself never
// schedules anything.
type Scheduler interface {
	// Schedule runs fn every interval until the returned Cancelable is
	// canceled. fn must not block for long; it runs on the scheduler's
	// goroutine.
	Schedule(interval time.Duration, fn func()) Cancelable
}

// Cancelable stops a scheduled task. Cancel is idempotent.
type Cancelable interface {
	Cancel()
}

// NoOpLogger provides a no-op logger implementation
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, fields map[string]interface{})  {}
func (n *NoOpLogger) Error(msg string, fields map[string]interface{}) {}
func (n *NoOpLogger) Warn(msg string, fields map[string]interface{})  {}
func (n *NoOpLogger) Debug(msg string, fields map[string]interface{}) {}

// NoOpScheduler never fires. It is the default when no scheduler is
// supplied; range samplers created under it simply never sample.
type NoOpScheduler struct{}

func (n *NoOpScheduler) Schedule(interval time.Duration, fn func()) Cancelable {
	return noOpCancelable{}
}

type noOpCancelable struct{}

func (noOpCancelable) Cancel() {}
