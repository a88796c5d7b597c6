// Package counter provides an atomic signed integer with fetch-add helpers
// and compound arithmetic built from compare-and-swap retry loops.
//
// Go atomics are sequentially consistent, so the Sync/Acquire/Release
// variants of ExchangeAdd are equivalent; they exist so call sites can state
// the ordering they rely on.
package counter

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Counter is an atomic int64. The zero value is ready to use.
// A Counter must not be copied after first use.
type Counter struct {
	_ cpu.CacheLinePad
	v atomic.Int64
	_ cpu.CacheLinePad
}

// New returns a Counter holding v.
func New(v int64) *Counter {
	c := &Counter{}
	c.v.Store(v)
	return c
}

func (c *Counter) Load() int64   { return c.v.Load() }
func (c *Counter) Store(v int64) { c.v.Store(v) }

// ExchangeAdd adds d and returns the previous value.
func (c *Counter) ExchangeAdd(d int64) int64 { return c.v.Add(d) - d }

func (c *Counter) ExchangeAddSync(d int64) int64    { return c.ExchangeAdd(d) }
func (c *Counter) ExchangeAddAcquire(d int64) int64 { return c.ExchangeAdd(d) }
func (c *Counter) ExchangeAddRelease(d int64) int64 { return c.ExchangeAdd(d) }

// Increment adds one and returns the new value.
func (c *Counter) Increment() int64     { return c.v.Add(1) }
func (c *Counter) IncrementSync() int64 { return c.v.Add(1) }

// Decrement subtracts one and returns the new value.
func (c *Counter) Decrement() int64 { return c.v.Add(-1) }

func (c *Counter) CompareAndSwap(old, new int64) bool { return c.v.CompareAndSwap(old, new) }

// Update applies fn until the compare-and-swap succeeds and returns the
// stored value. fn may run more than once and must be pure.
func (c *Counter) Update(fn func(int64) int64) int64 {
	for {
		old := c.v.Load()
		n := fn(old)
		if c.v.CompareAndSwap(old, n) {
			return n
		}
	}
}

// Mul is *=.
func (c *Counter) Mul(k int64) int64 {
	return c.Update(func(v int64) int64 { return v * k })
}

// Div is /=. Division by zero panics.
func (c *Counter) Div(k int64) int64 {
	if k == 0 {
		panic("counter: division by zero")
	}
	return c.Update(func(v int64) int64 { return v / k })
}

// Shl is <<=.
func (c *Counter) Shl(n uint) int64 {
	return c.Update(func(v int64) int64 { return v << n })
}

// Shr is >>= (arithmetic).
func (c *Counter) Shr(n uint) int64 {
	return c.Update(func(v int64) int64 { return v >> n })
}
