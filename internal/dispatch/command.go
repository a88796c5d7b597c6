package dispatch

import (
	"context"

	"eventloopd/internal/eventloop"
	"eventloopd/internal/variant"
)

// Command is a typed producer-side message. It travels through the queue as
// an Event named CommandName() carrying Payload().
type Command interface {
	CommandName() string
	Payload() variant.Variant
}

// EventOf converts a Command to the queue representation.
func EventOf(c Command) eventloop.Event {
	return eventloop.NewEvent(c.CommandName(), c.Payload())
}

// Post enqueues c without blocking.
func Post(q *eventloop.Queue, c Command) error { return q.Post(EventOf(c)) }

// Send enqueues c and waits, bounded by ctx, until the consumer dequeues it.
func Send(ctx context.Context, q *eventloop.Queue, c Command) error {
	return q.SendContext(ctx, EventOf(c))
}

// Quit posts the dispatcher's quit sentinel. It fails when the queue is full
// or already shut down.
func (d *Dispatcher) Quit() error { return d.q.PostName(d.quitName) }
