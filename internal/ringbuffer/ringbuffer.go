// Package ringbuffer implements a fixed-capacity circular buffer that can
// grow at either end. Inserting into a full buffer evicts from the opposite
// end, so the buffer always holds the most recent Cap() insertions.
//
// A Ring is not safe for concurrent use; callers synchronize.
package ringbuffer

// Ring is a fixed-capacity circular buffer of T.
type Ring[T any] struct {
	data  []T
	front int
	back  int // one past the last element
	size  int
}

// New allocates a Ring with the given capacity. It panics if capacity <= 0.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("ringbuffer: capacity must be > 0")
	}
	return &Ring[T]{data: make([]T, capacity)}
}

func (r *Ring[T]) Cap() int       { return len(r.data) }
func (r *Ring[T]) Len() int       { return r.size }
func (r *Ring[T]) IsFull() bool   { return r.size >= len(r.data) }
func (r *Ring[T]) IsEmpty() bool  { return r.front == r.back && !r.IsFull() }
func (r *Ring[T]) inc(i int) int  { return (i + 1) % len(r.data) }
func (r *Ring[T]) dec(i int) int  { return (i - 1 + len(r.data)) % len(r.data) }
func (r *Ring[T]) slot(i int) int { return (r.front + i) % len(r.data) }

// Append inserts v at the back. When full the front element is evicted.
func (r *Ring[T]) Append(v T) {
	full := r.IsFull()
	r.data[r.back] = v
	r.back = r.inc(r.back)
	if full {
		r.front = r.inc(r.front)
		return
	}
	r.size++
}

// Prepend inserts v at the front. When full the back element is evicted.
func (r *Ring[T]) Prepend(v T) {
	if r.IsFull() {
		r.back = r.dec(r.back)
	} else {
		r.size++
	}
	r.front = r.dec(r.front)
	r.data[r.front] = v
}

// At returns the i-th element counting from the front. It panics when i is
// outside [0, Len()).
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.size {
		panic("ringbuffer: index out of range")
	}
	return r.data[r.slot(i)]
}

// Ptr is like At but returns a pointer into the storage. The pointer is
// invalidated by the next insertion that reuses the slot.
func (r *Ring[T]) Ptr(i int) *T {
	if i < 0 || i >= r.size {
		panic("ringbuffer: index out of range")
	}
	return &r.data[r.slot(i)]
}

func (r *Ring[T]) First() T { return r.At(0) }
func (r *Ring[T]) Last() T  { return r.At(r.size - 1) }

// PopFront removes and returns the front element.
func (r *Ring[T]) PopFront() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	v := r.data[r.front]
	r.data[r.front] = zero
	r.front = r.inc(r.front)
	r.size--
	return v, true
}

// PopBack removes and returns the back element.
func (r *Ring[T]) PopBack() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	r.back = r.dec(r.back)
	v := r.data[r.back]
	r.data[r.back] = zero
	r.size--
	return v, true
}

// Clear empties the ring without releasing its storage. Stale elements are
// zeroed so they can be collected.
func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.data {
		r.data[i] = zero
	}
	r.front, r.back, r.size = 0, 0, 0
}

// Snapshot copies the live elements front to back.
func (r *Ring[T]) Snapshot() []T {
	out := make([]T, r.size)
	for i := range out {
		out[i] = r.data[r.slot(i)]
	}
	return out
}
