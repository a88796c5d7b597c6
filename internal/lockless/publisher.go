// Package lockless provides a single-writer, multi-reader channel that
// exposes only the most recently published value.
//
// The writer copies each value into its own cell, keeps the last
// HistoryDepth cells in a ring buffer and publishes the newest cell through
// an atomic pointer. Readers load that pointer and copy the value, so a read
// racing with SetState sees either the previous or the new value and never a
// partially written one. Neither side blocks.
//
// Only one goroutine may call SetState (and History) on a given Publisher.
// Values containing slices, maps or pointers are copied shallowly; publish
// immutable data or deep copies.
package lockless

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"eventloopd/internal/counter"
	"eventloopd/internal/ringbuffer"
)

// HistoryDepth is the number of published values retained by a Publisher.
const HistoryDepth = 8

type cell[T any] struct {
	value T
	gen   int64
}

// Publisher holds the latest snapshot of a T.
type Publisher[T any] struct {
	current atomic.Pointer[cell[T]]
	_       cpu.CacheLinePad
	gen     counter.Counter
	history *ringbuffer.Ring[*cell[T]] // writer-owned
}

// New returns an empty Publisher. State returns the zero T until the first
// SetState.
func New[T any]() *Publisher[T] {
	return &Publisher[T]{history: ringbuffer.New[*cell[T]](HistoryDepth)}
}

// SetState publishes v. Writer goroutine only.
func (p *Publisher[T]) SetState(v T) {
	c := &cell[T]{value: v, gen: p.gen.Load() + 1}
	p.history.Prepend(c)
	p.current.Store(c)
	p.gen.Store(c.gen)
}

// State returns a copy of the latest published value.
func (p *Publisher[T]) State() T {
	v, _ := p.Snapshot()
	return v
}

// Snapshot returns the latest value together with the generation it was
// published at. Generation 0 means nothing has been published.
func (p *Publisher[T]) Snapshot() (T, int64) {
	c := p.current.Load()
	if c == nil {
		var zero T
		return zero, 0
	}
	return c.value, c.gen
}

// Generation is the number of SetState calls that have completed.
func (p *Publisher[T]) Generation() int64 { return p.gen.Load() }

// History returns up to HistoryDepth retained values, newest first.
// Writer goroutine only.
func (p *Publisher[T]) History() []T {
	cells := p.history.Snapshot()
	out := make([]T, len(cells))
	for i, c := range cells {
		out[i] = c.value
	}
	return out
}
