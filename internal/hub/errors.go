package hub

import "errors"

// queueNotFoundError reports an unknown queue name (404 at the HTTP layer).
type queueNotFoundError struct{ name string }

func (e queueNotFoundError) Error() string { return "queue not found: " + e.name }

// ErrQueueNotFound returns the error used for unknown queue names.
func ErrQueueNotFound(name string) error { return queueNotFoundError{name: name} }

// IsQueueNotFound reports whether err indicates an unknown queue name.
func IsQueueNotFound(err error) bool {
	var e queueNotFoundError
	return errors.As(err, &e)
}

var (
	// ErrNotStarted is returned by Stop before Start.
	ErrNotStarted = errors.New("hub not started")

	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("hub already started")
)
