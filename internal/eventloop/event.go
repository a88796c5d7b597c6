package eventloop

import "eventloopd/internal/variant"

// FuncEventName is the name of events created by PostFunc. Their payload is
// a Pointer variant wrapping a func().
const FuncEventName = "eventloop.func"

// Event is a named unit of work with an attached payload. Events are
// identified by name only.
type Event struct {
	Name string
	Data variant.Variant
}

// NewEvent builds an Event.
func NewEvent(name string, data variant.Variant) Event {
	return Event{Name: name, Data: data}
}

// IsValid reports whether e carries a name. Next returns an invalid Event
// when the queue is empty.
func (e Event) IsValid() bool { return e.Name != "" }

// Func returns the callable of a PostFunc event.
func (e Event) Func() (func(), bool) {
	if e.Name != FuncEventName {
		return nil, false
	}
	fn, ok := e.Data.ToPointer().(func())
	return fn, ok && fn != nil
}
