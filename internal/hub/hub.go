package hub

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"eventloopd/internal/config"
	"eventloopd/internal/dispatch"
	"eventloopd/internal/eventloop"
	"eventloopd/internal/lockless"
	"eventloopd/pkg/types"
)

// State represents the lifecycle state of the hub.
type State string

const (
	StateIdle     State = "idle"
	StateReady    State = "ready"
	StateDegraded State = "degraded" // started, but a dispatcher has exited
	StateStopping State = "stopping"
	StateStopped  State = "stopped"
)

// channel bundles a queue with its single consumer.
type channel struct {
	q *eventloop.Queue
	d *dispatch.Dispatcher
}

type Hub struct {
	log zerolog.Logger
	pub EventPublisher

	// immutable after NewWithConfig
	channels    map[string]*channel
	order       []string
	poseRateHz  int
	workers     int
	sendTimeout time.Duration
	startup     []config.StartupEvent
	loadFn      LoadFunc
	poseSource  PoseSource

	pose   *lockless.Publisher[types.Pose]        // writer: sensor goroutine
	sensor *lockless.Publisher[types.SensorState] // writer: ui dispatcher

	jobs     chan loadJob
	pings    atomic.Int64
	lastLoad atomic.Pointer[types.LoadResult]

	mu        sync.RWMutex
	state     State
	startTime time.Time
	cancel    context.CancelFunc

	dispatchers sync.WaitGroup
	exited      atomic.Int32 // dispatchers whose Run has returned
	background  sync.WaitGroup // loader workers and sensor
}

func New() *Hub {
	// Delegate to NewWithConfig to centralize defaults
	return NewWithConfig(FromConfig(config.Defaults()))
}

// NewWithConfig constructs a Hub from HubConfig. The ui and loader queues
// are always present.
func NewWithConfig(cfg HubConfig) *Hub {
	h := &Hub{
		log:         zerolog.Nop(),
		pub:         noopPublisher{},
		channels:    make(map[string]*channel),
		poseRateHz:  cfg.PoseRateHz,
		workers:     cfg.LoaderWorkers,
		sendTimeout: cfg.SendTimeout,
		startup:     append([]config.StartupEvent(nil), cfg.StartupEvents...),
		loadFn:      cfg.LoadFunc,
		poseSource:  cfg.PoseSource,
		pose:        lockless.New[types.Pose](),
		sensor:      lockless.New[types.SensorState](),
		state:       StateIdle,
	}
	if cfg.Logger != nil {
		h.log = *cfg.Logger
	}
	if cfg.Publisher != nil {
		h.pub = cfg.Publisher
	}
	if h.workers <= 0 {
		h.workers = defaultWorkers
	}
	if h.sendTimeout <= 0 {
		h.sendTimeout = defaultSendTimeout
	}
	if h.poseRateHz == 0 {
		h.poseRateHz = config.DefaultPoseRateHz
	}
	if h.loadFn == nil {
		h.loadFn = statLoad
	}
	if h.poseSource == nil {
		h.poseSource = simulatedPose()
	}

	queues := config.Config{Queues: cfg.Queues}.WithDefaults().Queues
	for _, qc := range queues {
		if _, dup := h.channels[qc.Name]; dup {
			continue
		}
		q := eventloop.New(qc.Capacity, eventloop.WithName(qc.Name), eventloop.WithLogger(h.log))
		d := dispatch.New(q,
			dispatch.WithLogger(h.log),
			dispatch.WithFallback(dispatch.HandlerFunc(h.unhandled)),
		)
		h.channels[qc.Name] = &channel{q: q, d: d}
		h.order = append(h.order, qc.Name)
	}
	h.jobs = make(chan loadJob, h.channels[config.DefaultLoaderQueue].q.Cap())
	h.registerUIHandlers(h.channels[config.DefaultUIQueue].d)
	h.registerLoaderHandlers(h.channels[config.DefaultLoaderQueue].d)
	return h
}

// SetEventPublisher replaces the lifecycle event sink.
func (h *Hub) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	h.mu.Lock()
	h.pub = p
	h.mu.Unlock()
}

func (h *Hub) publish(e Event) {
	h.mu.RLock()
	p := h.pub
	h.mu.RUnlock()
	p.Publish(e)
}

// Start launches one dispatcher goroutine per queue, the loader workers and
// the pose sensor, then posts the configured startup events.
func (h *Hub) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.state != StateIdle {
		h.mu.Unlock()
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.state = StateReady
	h.startTime = time.Now()
	h.mu.Unlock()

	for _, name := range h.order {
		ch := h.channels[name]
		h.dispatchers.Add(1)
		go func() {
			defer h.dispatchers.Done()
			err := ch.d.Run(runCtx)
			h.exited.Add(1)
			if h.State() == StateDegraded {
				h.log.Error().Str("queue", ch.q.Name()).Err(err).Msg("dispatcher exited")
			}
		}()
	}
	for i := 0; i < h.workers; i++ {
		h.background.Add(1)
		go h.loadWorker(runCtx, i)
	}
	if h.poseRateHz > 0 {
		h.background.Add(1)
		go h.sensorLoop(runCtx)
	}

	for _, se := range h.startup {
		queue := se.Queue
		if queue == "" {
			queue = config.DefaultUIQueue
		}
		if err := h.Post(queue, eventloop.NewEvent(se.Name, se.Payload())); err != nil {
			h.log.Warn().Str("queue", queue).Str("event", se.Name).Err(err).Msg("startup event not posted")
		}
	}

	h.log.Info().Int("queues", len(h.order)).Int("loader_workers", h.workers).Int("pose_rate_hz", h.poseRateHz).Msg("hub started")
	h.publish(Event{Name: "hub_start", Fields: map[string]any{"queues": len(h.order)}})
	return nil
}

// Stop posts the quit sentinel to every queue and shuts the queues down, so
// dispatchers finish what was queued ahead of the sentinel. The loader workers
// and the sensor are then canceled. If ctx ends first everything is canceled
// and ctx.Err() is returned.
func (h *Hub) Stop(ctx context.Context) error {
	h.mu.Lock()
	if h.state != StateReady {
		h.mu.Unlock()
		return ErrNotStarted
	}
	h.state = StateStopping
	cancel := h.cancel
	h.mu.Unlock()
	defer cancel()

	for _, name := range h.order {
		ch := h.channels[name]
		if err := ch.d.Quit(); err != nil {
			// Full queue: the dispatcher stops through cancellation instead.
			h.log.Warn().Str("queue", name).Err(err).Msg("quit event not posted")
			cancel()
		}
		ch.q.Quit()
	}

	err := waitGroup(ctx, &h.dispatchers)
	cancel()
	if werr := waitGroup(ctx, &h.background); err == nil {
		err = werr
	}

	h.mu.Lock()
	h.state = StateStopped
	h.mu.Unlock()
	h.log.Info().Err(err).Msg("hub stopped")
	h.publish(Event{Name: "hub_stop"})
	return err
}

func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether the hub is started and every queue still has its
// consumer.
func (h *Hub) Ready() bool { return h.State() == StateReady }

// State reports the lifecycle state. A started hub whose dispatcher exited
// outside Stop reports StateDegraded.
func (h *Hub) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.state == StateReady && h.exited.Load() > 0 {
		return StateDegraded
	}
	return h.state
}

// SendTimeout is the configured bound for synchronous sends made on behalf
// of remote callers.
func (h *Hub) SendTimeout() time.Duration { return h.sendTimeout }

// QueueNames lists hosted queues in configuration order.
func (h *Hub) QueueNames() []string { return append([]string(nil), h.order...) }

// Queue returns the named queue.
func (h *Hub) Queue(name string) (*eventloop.Queue, error) {
	ch, ok := h.channels[name]
	if !ok {
		return nil, ErrQueueNotFound(name)
	}
	return ch.q, nil
}

// accept resolves the queue for an outside event. The dispatcher's quit
// sentinel and queued closures are internal and rejected with
// eventloop.ErrInvalidEvent.
func (h *Hub) accept(queue string, ev eventloop.Event) (*eventloop.Queue, error) {
	ch, ok := h.channels[queue]
	if !ok {
		return nil, ErrQueueNotFound(queue)
	}
	if ev.Name == ch.d.QuitEvent() || ev.Name == eventloop.FuncEventName {
		return nil, fmt.Errorf("%w: reserved event name %q", eventloop.ErrInvalidEvent, ev.Name)
	}
	return ch.q, nil
}

// Post enqueues ev on the named queue without blocking.
func (h *Hub) Post(queue string, ev eventloop.Event) error {
	q, err := h.accept(queue, ev)
	if err != nil {
		return err
	}
	return q.Post(ev)
}

// Send enqueues ev and waits, bounded by ctx, until it is dequeued.
func (h *Hub) Send(ctx context.Context, queue string, ev eventloop.Event) error {
	q, err := h.accept(queue, ev)
	if err != nil {
		return err
	}
	return q.SendContext(ctx, ev)
}

// Clear discards everything queued on the named queue.
func (h *Hub) Clear(queue string) error {
	q, err := h.Queue(queue)
	if err != nil {
		return err
	}
	q.Clear()
	return nil
}

func (h *Hub) unhandled(_ context.Context, ev eventloop.Event) error {
	h.publish(Event{Name: "event_unhandled", Fields: map[string]any{"event": ev.Name}})
	return nil
}
