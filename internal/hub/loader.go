package hub

import (
	"context"
	"fmt"

	"eventloopd/internal/config"
	"eventloopd/internal/dispatch"
	"eventloopd/internal/eventloop"
	"eventloopd/pkg/types"
)

type loadJob struct {
	path string
}

func (h *Hub) registerLoaderHandlers(d *dispatch.Dispatcher) {
	d.HandleFunc(EventLoad, h.enqueueLoad)
}

// enqueueLoad runs on the loader dispatcher and blocks while every worker is
// busy and the job buffer is full, so the loader queue applies backpressure.
func (h *Hub) enqueueLoad(ctx context.Context, ev eventloop.Event) error {
	path := loadPath(ev.Data)
	if path == "" {
		return fmt.Errorf("load: missing path")
	}
	select {
	case h.jobs <- loadJob{path: path}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) loadWorker(ctx context.Context, id int) {
	defer h.background.Done()
	log := h.log.With().Int("worker", id).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-h.jobs:
			n, err := h.loadFn(ctx, job.path)
			r := types.LoadResult{Path: job.path, Bytes: n, Worker: id}
			if err != nil {
				r.Error = err.Error()
				log.Warn().Str("path", job.path).Err(err).Msg("load failed")
			} else {
				log.Debug().Str("path", job.path).Int64("bytes", n).Msg("load finished")
			}
			if err := h.Post(config.DefaultUIQueue, loadDoneEvent(r)); err != nil {
				log.Warn().Str("path", job.path).Err(err).Msg("load_done not posted")
			}
		}
	}
}
