package hub

import (
	"context"
	"math"
	"time"

	"eventloopd/pkg/types"
)

// simulatedPose yaws the head back and forth, a full swing every four
// seconds. The quaternion is always unit length.
func simulatedPose() PoseSource {
	return func(seq int64, now time.Time) types.Pose {
		t := float64(now.UnixNano()) / float64(time.Second)
		yaw := (math.Pi / 4) * math.Sin(2*math.Pi*t/4)
		return types.Pose{
			Y:         math.Sin(yaw / 2),
			W:         math.Cos(yaw / 2),
			Seq:       seq,
			TimeNanos: now.UnixNano(),
		}
	}
}

// sensorLoop is the only writer of h.pose.
func (h *Hub) sensorLoop(ctx context.Context) {
	defer h.background.Done()
	period := time.Second / time.Duration(h.poseRateHz)
	if period <= 0 {
		period = time.Millisecond
	}
	tick := time.NewTicker(period)
	defer tick.Stop()
	var seq int64
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			seq++
			h.pose.SetState(h.poseSource(seq, now))
		}
	}
}
