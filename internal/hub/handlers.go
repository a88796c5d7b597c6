package hub

import (
	"context"
	"fmt"

	"eventloopd/internal/config"
	"eventloopd/internal/dispatch"
	"eventloopd/internal/eventloop"
	"eventloopd/internal/variant"
	"eventloopd/pkg/types"
)

// Event names understood by the ui queue.
const (
	EventPing      = "ping"
	EventSetSensor = "set_sensor"
	EventLoad      = "load"
	EventLoadDone  = "load_done"
)

func (h *Hub) registerUIHandlers(d *dispatch.Dispatcher) {
	d.HandleFunc(EventPing, h.handlePing)
	d.HandleFunc(EventSetSensor, h.handleSetSensor)
	d.HandleFunc(EventLoad, h.handleLoad)
	d.HandleFunc(EventLoadDone, h.handleLoadDone)
}

func (h *Hub) handlePing(_ context.Context, _ eventloop.Event) error {
	h.pings.Add(1)
	return nil
}

// handleSetSensor merges the supplied fields into the current sensor state.
// Absent keys keep their previous value.
func (h *Hub) handleSetSensor(_ context.Context, ev eventloop.Event) error {
	if !ev.Data.IsMap() {
		return fmt.Errorf("set_sensor: want map payload, got %s", ev.Data.Type())
	}
	s := h.sensor.State()
	if ev.Data.Contains("mounted") {
		s.Mounted = ev.Data.Value("mounted").ToBool()
	}
	if ev.Data.Contains("temperature") {
		s.Temperature = ev.Data.Value("temperature").ToDouble()
	}
	if ev.Data.Contains("battery") {
		s.Battery = int(ev.Data.Value("battery").ToInt64())
	}
	h.sensor.SetState(s)
	return nil
}

// handleLoad forwards a load request to the loader queue unchanged. The
// payload is either a path string or a map with a "path" key.
func (h *Hub) handleLoad(_ context.Context, ev eventloop.Event) error {
	if loadPath(ev.Data) == "" {
		return fmt.Errorf("load: missing path")
	}
	return h.Post(config.DefaultLoaderQueue, ev)
}

func (h *Hub) handleLoadDone(_ context.Context, ev eventloop.Event) error {
	if !ev.Data.IsMap() {
		return fmt.Errorf("load_done: want map payload, got %s", ev.Data.Type())
	}
	r := types.LoadResult{
		Path:   ev.Data.Value("path").ToString(),
		Bytes:  ev.Data.Value("bytes").ToInt64(),
		Error:  ev.Data.Value("error").ToString(),
		Worker: int(ev.Data.Value("worker").ToInt64()),
	}
	h.lastLoad.Store(&r)
	h.publish(Event{Name: "load_done", Queue: config.DefaultUIQueue, Fields: map[string]any{"path": r.Path, "bytes": r.Bytes}})
	return nil
}

func loadPath(v variant.Variant) string {
	switch {
	case v.IsString():
		return v.ToString()
	case v.IsMap():
		return v.Value("path").ToString()
	}
	return ""
}

func loadDoneEvent(r types.LoadResult) eventloop.Event {
	m := map[string]variant.Variant{
		"path":   variant.String(r.Path),
		"bytes":  variant.LongLong(r.Bytes),
		"worker": variant.Int(int32(r.Worker)),
	}
	if r.Error != "" {
		m["error"] = variant.String(r.Error)
	}
	return eventloop.NewEvent(EventLoadDone, variant.Map(m))
}
