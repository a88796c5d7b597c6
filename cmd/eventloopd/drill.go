package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"eventloopd/internal/dispatch"
	"eventloopd/internal/eventloop"
	"eventloopd/internal/variant"
)

const drillEvent = "drill.tick"

type drillOptions struct {
	producers int
	events    int
	capacity  int
	sync      bool
}

// drillResult is printed as JSON when the drill finishes.
type drillResult struct {
	Producers int             `json:"producers"`
	Events    int             `json:"events_per_producer"`
	Sync      bool            `json:"sync"`
	Handled   int64           `json:"handled"`
	Retries   int64           `json:"full_retries"`
	OutOfSeq  int64           `json:"out_of_order"`
	Elapsed   time.Duration   `json:"elapsed_ns"`
	PerSecond float64         `json:"events_per_second"`
	Queue     eventloop.Stats `json:"queue"`
	Dispatch  dispatch.Stats  `json:"dispatch"`
}

func newDrillCmd(root *rootOptions) *cobra.Command {
	opts := &drillOptions{}
	cmd := &cobra.Command{
		Use:     "drill",
		Short:   "Run an in-process producer/consumer drill and print stats",
		Example: "  eventloopd drill --producers 8 --events 10000\n  eventloopd drill --sync --capacity 4",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			log, err := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			res, err := runDrill(cmd.Context(), *opts, log)
			if err != nil {
				return err
			}
			return writeDrillResult(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&opts.producers, "producers", 4, "Number of producer goroutines")
	cmd.Flags().IntVar(&opts.events, "events", 1000, "Events posted by each producer")
	cmd.Flags().IntVar(&opts.capacity, "capacity", 64, "Queue capacity")
	cmd.Flags().BoolVar(&opts.sync, "sync", false, "Use synchronous sends instead of posts")
	return cmd
}

// runDrill has producers push numbered events through one queue and checks
// on the consumer side that each producer's events arrive in order.
func runDrill(ctx context.Context, o drillOptions, log zerolog.Logger) (drillResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if o.producers <= 0 || o.events <= 0 || o.capacity <= 0 {
		return drillResult{}, fmt.Errorf("producers, events and capacity must be positive")
	}
	q := eventloop.New(o.capacity, eventloop.WithName("drill"), eventloop.WithLogger(log))
	d := dispatch.New(q, dispatch.WithLogger(log))

	var handled, outOfSeq atomic.Int64
	last := make([]int64, o.producers)
	for i := range last {
		last[i] = -1
	}
	total := int64(o.producers * o.events)
	done := make(chan struct{})
	d.HandleFunc(drillEvent, func(_ context.Context, ev eventloop.Event) error {
		p := ev.Data.Value("producer").ToInt64()
		seq := ev.Data.Value("seq").ToInt64()
		// only the consumer goroutine touches last
		if seq != last[p]+1 {
			outOfSeq.Add(1)
		}
		last[p] = seq
		if handled.Add(1) == total {
			close(done)
		}
		return nil
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- d.Run(runCtx) }()

	var retries atomic.Int64
	var wg sync.WaitGroup
	start := time.Now()
	errs := make(chan error, o.producers)
	for p := 0; p < o.producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < o.events; i++ {
				ev := eventloop.NewEvent(drillEvent, variant.Map(map[string]variant.Variant{
					"producer": variant.Int(int32(p)),
					"seq":      variant.LongLong(int64(i)),
				}))
				for {
					var err error
					if o.sync {
						err = q.SendContext(runCtx, ev)
					} else {
						err = q.Post(ev)
					}
					if err == nil {
						break
					}
					// A full queue is retried in both modes: SendContext does not wait for space.
					if !eventloop.IsQueueFull(err) || runCtx.Err() != nil {
						errs <- err
						return
					}
					retries.Add(1)
					runtime.Gosched()
				}
			}
		}(p)
	}
	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return drillResult{}, err
	}

	select {
	case <-done:
	case <-ctx.Done():
		return drillResult{}, ctx.Err()
	}
	elapsed := time.Since(start)
	if err := d.Quit(); err != nil {
		return drillResult{}, err
	}
	if err := <-runErr; err != nil {
		return drillResult{}, err
	}
	q.Quit()

	res := drillResult{
		Producers: o.producers,
		Events:    o.events,
		Sync:      o.sync,
		Handled:   handled.Load(),
		Retries:   retries.Load(),
		OutOfSeq:  outOfSeq.Load(),
		Elapsed:   elapsed,
		Queue:     q.Stats(),
		Dispatch:  d.Stats(),
	}
	if elapsed > 0 {
		res.PerSecond = float64(res.Handled) / elapsed.Seconds()
	}
	log.Info().Int64("handled", res.Handled).Dur("elapsed", elapsed).Int64("retries", res.Retries).Msg("drill finished")
	return res, nil
}

func writeDrillResult(w io.Writer, r drillResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
