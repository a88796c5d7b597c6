package hub

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"eventloopd/internal/common/fsutil"
	"eventloopd/internal/config"
	"eventloopd/pkg/types"
)

// Defaults applied when corresponding HubConfig fields are unset.
const (
	defaultSendTimeout = 2 * time.Second
	defaultWorkers     = 2
)

// LoadFunc performs one background load and reports the loaded size.
type LoadFunc func(ctx context.Context, path string) (int64, error)

// PoseSource produces the seq-th pose sample at now.
type PoseSource func(seq int64, now time.Time) types.Pose

// HubConfig encapsulates all tunables for Hub construction.
type HubConfig struct {
	Queues []config.QueueConfig
	// PoseRateHz is the sensor sampling rate; negative disables the sensor.
	PoseRateHz    int
	LoaderWorkers int
	SendTimeout   time.Duration
	StartupEvents []config.StartupEvent

	Logger     *zerolog.Logger
	Publisher  EventPublisher
	LoadFunc   LoadFunc
	PoseSource PoseSource
}

// FromConfig maps the file configuration onto a HubConfig.
func FromConfig(c config.Config) HubConfig {
	c = c.WithDefaults()
	return HubConfig{
		Queues:        c.Queues,
		PoseRateHz:    c.PoseRateHz,
		LoaderWorkers: c.LoaderWorkers,
		SendTimeout:   time.Duration(c.SendTimeoutMS) * time.Millisecond,
		StartupEvents: c.StartupEvents,
	}
}

// statLoad is the default LoadFunc: it reports the size of the regular file
// at path. A leading "~/" is expanded.
func statLoad(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return fsutil.FileSize(path)
}
