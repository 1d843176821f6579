package metric

import (
	"math"
	"sync/atomic"
)

// Gauge tracks a value that can be set, raised, and lowered. Snapshots
// read the current value without resetting it. Methods are safe for
// concurrent use.
type Gauge struct {
	bits atomic.Uint64 // float64 bits
}

// Set replaces the current value.
func (g *Gauge) Set(value float64) {
	g.bits.Store(math.Float64bits(value))
}

// Add adds delta (which may be negative) to the current value.
func (g *Gauge) Add(delta float64) {
	for {
		old := g.bits.Load()
		updated := math.Float64bits(math.Float64frombits(old) + delta)
		if g.bits.CompareAndSwap(old, updated) {
			return
		}
	}
}

// Increment adds one to the current value.
func (g *Gauge) Increment() {
	g.Add(1)
}

// Decrement subtracts one from the current value.
func (g *Gauge) Decrement() {
	g.Add(-1)
}

// Value returns the current value.
func (g *Gauge) Value() float64 {
	return math.Float64frombits(g.bits.Load())
}
