package dispatch

import "github.com/prometheus/client_golang/prometheus"

var (
	handledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventloopd",
			Subsystem: "dispatch",
			Name:      "handled_total",
			Help:      "Events processed successfully by a handler",
		},
		[]string{"queue"},
	)

	handlerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventloopd",
			Subsystem: "dispatch",
			Name:      "handler_errors_total",
			Help:      "Handler invocations that returned an error",
		},
		[]string{"queue"},
	)

	handlerPanics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventloopd",
			Subsystem: "dispatch",
			Name:      "handler_panics_total",
			Help:      "Handler invocations that panicked",
		},
		[]string{"queue"},
	)

	unhandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventloopd",
			Subsystem: "dispatch",
			Name:      "unhandled_total",
			Help:      "Events with no registered handler",
		},
		[]string{"queue"},
	)
)

func init() {
	prometheus.MustRegister(handledTotal, handlerErrors, handlerPanics, unhandledTotal)
}
