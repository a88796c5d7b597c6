package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventloopd/internal/eventloop"
	"eventloopd/internal/variant"
	"eventloopd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Status() types.StatusResponse
	Queues() []types.QueueStatus
	Pose() types.PoseResponse
	Post(queue string, ev eventloop.Event) error
	Send(ctx context.Context, queue string, ev eventloop.Event) error
	Clear(queue string) error
	SendTimeout() time.Duration
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(RequestLogger)
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/queues", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.QueuesResponse{Queues: svc.Queues()})
	})

	r.Post("/queues/{name}/events", func(w http.ResponseWriter, r *http.Request) {
		postEvent(svc, w, r)
	})

	r.Delete("/queues/{name}", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(chi.URLParam(r, "name")); err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/pose", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Pose())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// postEvent accepts an event for a queue. Asynchronous posts answer 202 as
// soon as the event is queued; synchronous posts answer 200 once the
// consumer has dequeued it.
func postEvent(svc Service, w http.ResponseWriter, r *http.Request) {
	queue := chi.URLParam(r, "name")
	// Content-Type check
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.PostEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	data := variant.Null()
	if len(req.Data) > 0 {
		v, err := variant.ParseJSON(string(req.Data))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid event data")
			return
		}
		data = v
	}
	ev := eventloop.NewEvent(req.Name, data)

	var err error
	if req.Sync {
		timeout := sendTimeoutOverride
		if timeout <= 0 {
			timeout = svc.SendTimeout()
		}
		ctx, cancel := sendContext(r, timeout)
		defer cancel()
		err = svc.Send(ctx, queue, ev)
		if err != nil && r.Context().Err() != nil {
			// client went away
			return
		}
	} else {
		err = svc.Post(queue, ev)
	}
	if err != nil {
		status := statusFor(err)
		if status == http.StatusTooManyRequests {
			IncrementBackpressure(queue)
		}
		writeJSONError(w, status, err.Error())
		return
	}

	countAccepted(queue, req.Sync)
	status := http.StatusAccepted
	if req.Sync {
		status = http.StatusOK
	}
	writeJSON(w, status, types.PostEventResponse{Queue: queue, Name: req.Name, Delivered: req.Sync})
}

func corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: corsAllowedMethods,
		AllowedHeaders: corsAllowedHeaders,
		MaxAge:         300,
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if len(opts.AllowedMethods) == 0 {
		opts.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	}
	if len(opts.AllowedHeaders) == 0 {
		opts.AllowedHeaders = []string{"Accept", "Content-Type", "X-Request-Id", "X-Log-Level"}
	}
	return opts
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
