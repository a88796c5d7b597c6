// Package eventloop implements a fixed-capacity FIFO of named events for
// handing work from any number of producer goroutines to one consumer.
//
// Producers Post (fire and forget) or Send (block until the consumer has
// dequeued that exact event). The consumer blocks in Wait until something is
// queued and drains with Next. Post never blocks: a full queue drops the
// event and reports ErrQueueFull.
//
// Next must only be called from a single goroutine.
package eventloop

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"eventloopd/internal/variant"
)

// sendTicket is completed by Next when a synchronized slot is dequeued.
type sendTicket struct {
	done bool
}

type slot struct {
	event        Event
	synchronized bool
	ticket       *sendTicket
}

// Queue is the event queue. Create with New.
type Queue struct {
	name string
	log  zerolog.Logger

	mu       sync.Mutex
	posted   *sync.Cond // queue became non-empty
	received *sync.Cond // a synchronized slot was dequeued
	slots    []slot
	head     uint64 // next slot to dequeue
	tail     uint64 // next slot to fill
	quit     bool

	waitingSenders int
	nPosted        uint64
	nDelivered     uint64
	nDropped       uint64
	nCleared       uint64

	metrics queueMetrics
}

// Option configures a Queue.
type Option func(*Queue)

// WithName sets the name used in logs and metric labels.
func WithName(name string) Option {
	return func(q *Queue) {
		if name != "" {
			q.name = name
		}
	}
}

// WithLogger installs a structured logger. The default discards.
func WithLogger(l zerolog.Logger) Option {
	return func(q *Queue) { q.log = l }
}

// New creates a queue with the given capacity. It panics if capacity <= 0.
func New(capacity int, opts ...Option) *Queue {
	if capacity <= 0 {
		panic("eventloop: capacity must be > 0")
	}
	q := &Queue{
		name:  "default",
		log:   zerolog.Nop(),
		slots: make([]slot, capacity),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.posted = sync.NewCond(&q.mu)
	q.received = sync.NewCond(&q.mu)
	q.log = q.log.With().Str("queue", q.name).Logger()
	q.metrics = newQueueMetrics(q.name)
	return q
}

func (q *Queue) Name() string { return q.name }
func (q *Queue) Cap() int     { return len(q.slots) }

// Len is the number of posted but undequeued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int(q.tail - q.head)
}

// Closed reports whether Quit has been called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.quit
}

// enqueueLocked stores ev at tail. Callers hold q.mu.
func (q *Queue) enqueueLocked(ev Event, synchronized bool) (*sendTicket, error) {
	if ev.Name == "" {
		return nil, ErrInvalidEvent
	}
	if q.quit {
		q.nDropped++
		q.metrics.closed.Inc()
		q.log.Debug().Str("event", ev.Name).Msg("post after quit rejected")
		return nil, ErrQueueClosed
	}
	if q.tail-q.head >= uint64(len(q.slots)) {
		q.nDropped++
		q.metrics.full.Inc()
		q.log.Debug().Str("event", ev.Name).Int("capacity", len(q.slots)).Msg("queue full, event dropped")
		return nil, ErrQueueFull
	}
	s := &q.slots[q.tail%uint64(len(q.slots))]
	s.event = ev
	s.synchronized = synchronized
	if synchronized {
		s.ticket = &sendTicket{}
	}
	q.tail++
	q.nPosted++
	q.metrics.posted.Inc()
	q.metrics.depth.Set(float64(q.tail - q.head))
	q.posted.Broadcast()
	return s.ticket, nil
}

// Post enqueues ev without blocking.
func (q *Queue) Post(ev Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, err := q.enqueueLocked(ev, false)
	return err
}

// PostName posts an event with a Null payload.
func (q *Queue) PostName(name string) error { return q.Post(Event{Name: name}) }

// PostData posts an event with the given payload.
func (q *Queue) PostData(name string, data variant.Variant) error {
	return q.Post(NewEvent(name, data))
}

// PostFunc posts fn to be run by the consumer. See Event.Func.
func (q *Queue) PostFunc(fn func()) error {
	return q.Post(NewEvent(FuncEventName, variant.Pointer(fn)))
}

// Send enqueues ev and blocks until the consumer has dequeued it. If no
// consumer ever calls Next, Send blocks forever; use SendContext to bound
// the wait.
func (q *Queue) Send(ev Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	t, err := q.enqueueLocked(ev, true)
	if err != nil {
		return err
	}
	start := time.Now()
	q.waitingSenders++
	for !t.done {
		q.received.Wait()
	}
	q.waitingSenders--
	q.metrics.sendWait.Observe(time.Since(start).Seconds())
	return nil
}

func (q *Queue) SendName(name string) error { return q.Send(Event{Name: name}) }

func (q *Queue) SendData(name string, data variant.Variant) error {
	return q.Send(NewEvent(name, data))
}

// SendContext is Send bounded by ctx. On cancellation it returns ctx.Err();
// an event already queued stays queued and will still be delivered.
func (q *Queue) SendContext(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	t, err := q.enqueueLocked(ev, true)
	if err != nil {
		q.mu.Unlock()
		return err
	}
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.received.Broadcast()
		q.mu.Unlock()
	})
	start := time.Now()
	q.waitingSenders++
	for !t.done && ctx.Err() == nil {
		q.received.Wait()
	}
	q.waitingSenders--
	done := t.done
	q.mu.Unlock()
	stop()
	if !done {
		q.log.Debug().Str("event", ev.Name).Err(ctx.Err()).Msg("send abandoned before delivery")
		return ctx.Err()
	}
	q.metrics.sendWait.Observe(time.Since(start).Seconds())
	return nil
}

// Wait blocks until the queue is non-empty. It returns immediately when
// events are already queued. Quit does not wake a blocked Wait.
func (q *Queue) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.tail == q.head {
		q.posted.Wait()
	}
}

// WaitContext is Wait bounded by ctx.
func (q *Queue) WaitContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	if q.tail != q.head {
		q.mu.Unlock()
		return nil
	}
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.posted.Broadcast()
		q.mu.Unlock()
	})
	for q.tail == q.head && ctx.Err() == nil {
		q.posted.Wait()
	}
	ready := q.tail != q.head
	q.mu.Unlock()
	stop()
	if ready {
		return nil
	}
	return ctx.Err()
}

// Next dequeues the oldest event without blocking. It returns an invalid
// Event when the queue is empty. Dequeuing a synchronized slot releases its
// blocked sender.
func (q *Queue) Next() Event {
	ev, _ := q.TryNext()
	return ev
}

// TryNext is Next with an explicit presence flag.
func (q *Queue) TryNext() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head == q.tail {
		return Event{}, false
	}
	s := &q.slots[q.head%uint64(len(q.slots))]
	ev := s.event
	t := s.ticket
	synchronized := s.synchronized
	*s = slot{}
	q.head++
	q.nDelivered++
	q.metrics.delivered.Inc()
	q.metrics.depth.Set(float64(q.tail - q.head))
	if synchronized {
		t.done = true
		q.received.Broadcast()
	}
	return ev, true
}

// Clear discards every queued event. Senders blocked on a discarded event
// stay blocked: plain Send never returns, SendContext returns when its
// context ends.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.tail - q.head
	for i := q.head; i != q.tail; i++ {
		q.slots[i%uint64(len(q.slots))] = slot{}
	}
	q.head = q.tail
	q.nCleared += n
	if n > 0 {
		q.metrics.cleared.Add(float64(n))
		q.log.Debug().Uint64("discarded", n).Msg("queue cleared")
	}
	q.metrics.depth.Set(0)
}

// Quit shuts the queue down. Later posts fail with ErrQueueClosed; queued
// events remain drainable. Blocked Wait and Send calls are not woken.
func (q *Queue) Quit() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.quit {
		q.quit = true
		q.log.Debug().Msg("queue shut down")
	}
}

// Stats is a point-in-time view of a Queue.
type Stats struct {
	Name           string `json:"name"`
	Capacity       int    `json:"capacity"`
	Depth          int    `json:"depth"`
	Posted         uint64 `json:"posted"`
	Delivered      uint64 `json:"delivered"`
	Dropped        uint64 `json:"dropped"`
	Cleared        uint64 `json:"cleared"`
	WaitingSenders int    `json:"waiting_senders"`
	Closed         bool   `json:"closed"`
}

// Stats returns counters under the queue lock.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Name:           q.name,
		Capacity:       len(q.slots),
		Depth:          int(q.tail - q.head),
		Posted:         q.nPosted,
		Delivered:      q.nDelivered,
		Dropped:        q.nDropped,
		Cleared:        q.nCleared,
		WaitingSenders: q.waitingSenders,
		Closed:         q.quit,
	}
}
