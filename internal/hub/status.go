package hub

import (
	"time"

	"eventloopd/pkg/types"
)

// Pose returns the latest head pose and its publish generation.
// Generation 0 means no sample has been published yet.
func (h *Hub) Pose() types.PoseResponse {
	p, gen := h.pose.Snapshot()
	return types.PoseResponse{Pose: p, Generation: gen}
}

// Sensor returns the latest sensor state.
func (h *Hub) Sensor() types.SensorState { return h.sensor.State() }

// Pings is the number of ping events handled on the ui queue.
func (h *Hub) Pings() int64 { return h.pings.Load() }

// LastLoad returns the most recent loader result, nil before the first one.
func (h *Hub) LastLoad() *types.LoadResult {
	r := h.lastLoad.Load()
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

// Queues reports every hosted queue in configuration order.
func (h *Hub) Queues() []types.QueueStatus {
	out := make([]types.QueueStatus, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, h.queueStatus(h.channels[name]))
	}
	return out
}

// QueueStatus reports one queue.
func (h *Hub) QueueStatus(name string) (types.QueueStatus, error) {
	ch, ok := h.channels[name]
	if !ok {
		return types.QueueStatus{}, ErrQueueNotFound(name)
	}
	return h.queueStatus(ch), nil
}

func (h *Hub) queueStatus(ch *channel) types.QueueStatus {
	qs := ch.q.Stats()
	ds := ch.d.Stats()
	return types.QueueStatus{
		Name:           qs.Name,
		Capacity:       qs.Capacity,
		Depth:          qs.Depth,
		Posted:         qs.Posted,
		Delivered:      qs.Delivered,
		Dropped:        qs.Dropped,
		Cleared:        qs.Cleared,
		WaitingSenders: qs.WaitingSenders,
		Closed:         qs.Closed,
		Handled:        ds.Handled,
		Failed:         ds.Failed,
		Panicked:       ds.Panicked,
		Unhandled:      ds.Unhandled,
		Running:        ds.Running,
	}
}

// Status returns a snapshot of the whole hub.
func (h *Hub) Status() types.StatusResponse {
	state := h.State()
	h.mu.RLock()
	started := h.startTime
	h.mu.RUnlock()
	var uptime float64
	if !started.IsZero() {
		uptime = time.Since(started).Seconds()
	}
	return types.StatusResponse{
		State:         string(state),
		UptimeSeconds: uptime,
		Queues:        h.Queues(),
		Pose:          h.Pose(),
		Sensor:        h.Sensor(),
		Pings:         h.Pings(),
		LastLoad:      h.LastLoad(),
	}
}
