package hub

// Event represents a hub lifecycle event.
// Minimal and stable: name + queue and optional fields via key/values.
type Event struct {
	Name   string
	Queue  string
	Fields map[string]any
}

// EventPublisher receives events from the hub. Implementations should be
// lightweight and non-blocking; Publish must not panic. It may be called from
// any hub goroutine.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
