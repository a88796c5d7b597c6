package eventloop

import "errors"

var (
	// ErrQueueFull is returned when a post finds every slot occupied. The
	// event is dropped.
	ErrQueueFull = errors.New("event queue is full")

	// ErrQueueClosed is returned for posts after Quit.
	ErrQueueClosed = errors.New("event queue is shut down")

	// ErrInvalidEvent is returned when posting an event without a name, and
	// by callers that refuse reserved names.
	ErrInvalidEvent = errors.New("invalid event")
)

// IsQueueFull reports whether err indicates a dropped event due to capacity.
func IsQueueFull(err error) bool { return errors.Is(err, ErrQueueFull) }

// IsQueueClosed reports whether err indicates the queue was shut down.
func IsQueueClosed(err error) bool { return errors.Is(err, ErrQueueClosed) }
