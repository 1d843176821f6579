package metric

import "sync/atomic"

// Counter is a monotonic counter incarnation. Snapshots harvest the
// count accumulated since the previous harvest (delta semantics).
// Methods are safe for concurrent use.
type Counter struct {
	value atomic.Int64
}

// Increment adds one to the counter.
func (c *Counter) Increment() {
	c.value.Add(1)
}

// Add adds n to the counter. Negative increments are ignored; counters
// are monotonic.
func (c *Counter) Add(n int64) {
	if n < 0 {
		return
	}
	c.value.Add(n)
}

// snapshot returns the accumulated count. When reset is true the
// counter restarts from zero, giving per-period deltas.
func (c *Counter) snapshot(reset bool) int64 {
	if reset {
		return c.value.Swap(0)
	}
	return c.value.Load()
}
