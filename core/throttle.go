package core

import (
	"sync"
	"time"
)

// LogThrottle suppresses repeated log emissions from a noisy source.
// When a reporting backend stays down, every harvest tick produces the
// same failure; the throttle lets one line through per key per window
// so the log stays readable without going silent.
//
// Keys partition the throttle. The reporting runner keys by reporter
// name, so one flapping backend cannot crowd another backend's errors
// out of the log; the logger keys by message. Keys are expected to be
// low-cardinality (reporter names, fixed messages) and are never
// evicted.
type LogThrottle struct {
	window time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

// NewLogThrottle creates a throttle allowing one emission per key per
// window.
func NewLogThrottle(window time.Duration) *LogThrottle {
	return &LogThrottle{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether an emission for key may proceed now, and if so
// starts the key's next window.
func (t *LogThrottle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if last, ok := t.last[key]; ok && now.Sub(last) < t.window {
		return false
	}
	t.last[key] = now
	return true
}
