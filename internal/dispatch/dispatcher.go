// Package dispatch runs the single consumer of an eventloop.Queue and routes
// each event to the handler registered for its name.
//
// A Dispatcher owns draining: Run blocks in WaitContext, drains with Next and
// returns when it dequeues the quit event or its context ends. Producers can
// stay with (name, Variant) events or use the Command helpers.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"eventloopd/internal/eventloop"
)

// QuitEventName is the default sentinel that stops Run.
const QuitEventName = "quit"

// ErrAlreadyRunning is returned when Run is called while another Run is
// active on the same Dispatcher.
var ErrAlreadyRunning = errors.New("dispatcher already running")

// Handler processes one event on the consumer goroutine.
type Handler interface {
	HandleEvent(ctx context.Context, ev eventloop.Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev eventloop.Event) error

func (f HandlerFunc) HandleEvent(ctx context.Context, ev eventloop.Event) error { return f(ctx, ev) }

// Dispatcher drains one queue.
type Dispatcher struct {
	q        *eventloop.Queue
	log      zerolog.Logger
	quitName string
	fallback Handler

	mu       sync.RWMutex
	handlers map[string]Handler
	running  atomic.Bool

	handled   atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
	unhandled atomic.Uint64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithLogger(l zerolog.Logger) Option { return func(d *Dispatcher) { d.log = l } }

// WithFallback handles events that have no registered handler.
func WithFallback(h Handler) Option { return func(d *Dispatcher) { d.fallback = h } }

// WithQuitEvent changes the sentinel name that stops Run.
func WithQuitEvent(name string) Option {
	return func(d *Dispatcher) {
		if name != "" {
			d.quitName = name
		}
	}
}

// New creates a Dispatcher for q.
func New(q *eventloop.Queue, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		q:        q,
		log:      zerolog.Nop(),
		quitName: QuitEventName,
		handlers: make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With().Str("queue", q.Name()).Logger()
	return d
}

// Queue returns the drained queue.
func (d *Dispatcher) Queue() *eventloop.Queue { return d.q }

// QuitEvent is the name of the sentinel that stops Run.
func (d *Dispatcher) QuitEvent() string { return d.quitName }

// Handle registers h for events named name, replacing any previous handler.
func (d *Dispatcher) Handle(name string, h Handler) {
	d.mu.Lock()
	d.handlers[name] = h
	d.mu.Unlock()
}

func (d *Dispatcher) HandleFunc(name string, fn func(ctx context.Context, ev eventloop.Event) error) {
	d.Handle(name, HandlerFunc(fn))
}

func (d *Dispatcher) handler(name string) Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if h, ok := d.handlers[name]; ok {
		return h
	}
	return d.fallback
}

// Run drains the queue until the quit event (returns nil) or ctx ends
// (returns ctx.Err()). Events queued behind the quit event are left queued.
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer d.running.Store(false)
	d.log.Debug().Msg("dispatcher started")
	for {
		if err := d.q.WaitContext(ctx); err != nil {
			d.log.Debug().Err(err).Msg("dispatcher stopped")
			return err
		}
		for ev, ok := d.q.TryNext(); ok; ev, ok = d.q.TryNext() {
			if ev.Name == d.quitName {
				d.log.Debug().Msg("quit event received")
				return nil
			}
			d.dispatch(ctx, ev)
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
}

// Drain dispatches whatever is queued without blocking and reports how many
// events were processed. A quit event stops the drain.
func (d *Dispatcher) Drain(ctx context.Context) int {
	n := 0
	for ev, ok := d.q.TryNext(); ok; ev, ok = d.q.TryNext() {
		if ev.Name == d.quitName {
			break
		}
		d.dispatch(ctx, ev)
		n++
	}
	return n
}

func (d *Dispatcher) dispatch(ctx context.Context, ev eventloop.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.panicked.Add(1)
			handlerPanics.WithLabelValues(d.q.Name()).Inc()
			d.log.Error().
				Str("event", ev.Name).
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
		}
	}()

	if fn, ok := ev.Func(); ok {
		fn()
		d.handled.Add(1)
		handledTotal.WithLabelValues(d.q.Name()).Inc()
		return
	}
	h := d.handler(ev.Name)
	if h == nil {
		d.unhandled.Add(1)
		unhandledTotal.WithLabelValues(d.q.Name()).Inc()
		d.log.Debug().Str("event", ev.Name).Msg("no handler for event")
		return
	}
	if err := h.HandleEvent(ctx, ev); err != nil {
		d.failed.Add(1)
		handlerErrors.WithLabelValues(d.q.Name()).Inc()
		d.log.Warn().Str("event", ev.Name).Err(err).Msg("handler failed")
		return
	}
	d.handled.Add(1)
	handledTotal.WithLabelValues(d.q.Name()).Inc()
}

// Stats counts dispatch outcomes.
type Stats struct {
	Handled   uint64 `json:"handled"`
	Failed    uint64 `json:"failed"`
	Panicked  uint64 `json:"panicked"`
	Unhandled uint64 `json:"unhandled"`
	Running   bool   `json:"running"`
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Handled:   d.handled.Load(),
		Failed:    d.failed.Load(),
		Panicked:  d.panicked.Load(),
		Unhandled: d.unhandled.Load(),
		Running:   d.running.Load(),
	}
}
