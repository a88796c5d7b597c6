package types

// Pose is a head-pose sample published by the sensor thread.
type Pose struct {
    // Orientation quaternion.
    X float64 `json:"x"`
    Y float64 `json:"y"`
    Z float64 `json:"z"`
    W float64 `json:"w"`
    // Sample sequence number, monotonically increasing per publisher.
    Seq int64 `json:"seq"`
    // Sample time (unix nanoseconds).
    TimeNanos int64 `json:"time_ns"`
}

// SensorState is the latest device state reported through the ui queue.
type SensorState struct {
    Mounted     bool    `json:"mounted"`
    Temperature float64 `json:"temperature"`
    Battery     int     `json:"battery"`
}

// LoadResult is posted back by a loader worker when a background load finishes.
type LoadResult struct {
    Path   string `json:"path"`
    Bytes  int64  `json:"bytes"`
    Error  string `json:"error,omitempty"`
    Worker int    `json:"worker"`
}
