// Package hub is the composition root of the daemon. It owns every hosted
// event queue with its dispatcher, the latest-value publishers for head pose
// and sensor state, the pose sensor goroutine and the background loader pool.
// Nothing here is a process global: construct a Hub with NewWithConfig and
// pass it to collaborators.
//
// It is structured into small files by concern:
//
//   - hub.go: Hub type, constructor, lifecycle (Start/Stop), queue access.
//   - config.go: HubConfig and package defaults; NewWithConfig applies defaults.
//   - errors.go: error types and helpers (IsQueueNotFound).
//   - events.go / eventpub_memory.go: lifecycle event publishing hooks.
//   - handlers.go: ui queue handlers (ping, set_sensor, load, load_done).
//   - loader.go: loader queue consumer and worker pool.
//   - sensor.go: single-writer pose sampling loop.
//   - status.go: Status/Queues/Pose reporting helpers.
//
// Topology: producers post to "ui"; a "load" there is forwarded to the
// "loader" queue, whose dispatcher hands jobs to LoaderWorkers goroutines;
// each worker posts "load_done" back to "ui". Each queue has exactly one
// consumer goroutine and each publisher exactly one writer goroutine.
package hub
