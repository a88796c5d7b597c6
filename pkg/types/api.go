package types

import "encoding/json"

// PostEventRequest is the body of POST /queues/{name}/events.
type PostEventRequest struct {
	// Event name the consumer dispatches on.
	// example: ping
	Name string `json:"name" example:"ping"`
	// Arbitrary JSON payload, decoded into a Variant.
	Data json.RawMessage `json:"data,omitempty" swaggertype:"object"`
	// If true, block until the consumer has dequeued the event (bounded by the server send timeout).
	// example: false
	Sync bool `json:"sync,omitempty" example:"false"`
}

// PostEventResponse acknowledges an accepted event.
type PostEventResponse struct {
	// example: ui
	Queue string `json:"queue" example:"ui"`
	// example: ping
	Name string `json:"name" example:"ping"`
	// True when the event was delivered synchronously.
	// example: false
	Delivered bool `json:"delivered" example:"false"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// QueueStatus summarizes one hosted queue and its dispatcher.
type QueueStatus struct {
	// example: ui
	Name string `json:"name" example:"ui"`
	// example: 64
	Capacity int `json:"capacity" example:"64"`
	// Posted but not yet dequeued events.
	// example: 0
	Depth int `json:"depth" example:"0"`
	// example: 120
	Posted uint64 `json:"posted" example:"120"`
	// example: 120
	Delivered uint64 `json:"delivered" example:"120"`
	// Events rejected because the queue was full or shut down.
	// example: 0
	Dropped uint64 `json:"dropped" example:"0"`
	// Events discarded by clear.
	// example: 0
	Cleared uint64 `json:"cleared" example:"0"`
	// Producers blocked in a synchronous send.
	// example: 0
	WaitingSenders int `json:"waiting_senders" example:"0"`
	// example: false
	Closed bool `json:"closed" example:"false"`
	// Dispatcher outcome counters.
	Handled   uint64 `json:"handled"`
	Failed    uint64 `json:"failed"`
	Panicked  uint64 `json:"panicked"`
	Unhandled uint64 `json:"unhandled"`
	// example: true
	Running bool `json:"running" example:"true"`
}

// QueuesResponse wraps the list returned by GET /queues.
type QueuesResponse struct {
	Queues []QueueStatus `json:"queues"`
}

// PoseResponse is returned by GET /pose.
type PoseResponse struct {
	Pose Pose `json:"pose"`
	// Publish generation of the pose; 0 means no sample yet.
	// example: 4231
	Generation int64 `json:"generation" example:"4231"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// example: ready
	State string `json:"state" example:"ready"`
	// Seconds since the hub started.
	// example: 12.5
	UptimeSeconds float64      `json:"uptime_seconds" example:"12.5"`
	Queues        []QueueStatus `json:"queues"`
	Pose          PoseResponse  `json:"pose"`
	Sensor        SensorState   `json:"sensor"`
	// Pings handled on the ui queue.
	// example: 3
	Pings int64 `json:"pings" example:"3"`
	// Most recent background load result, if any.
	LastLoad *LoadResult `json:"last_load,omitempty"`
}
