package eventloop

import "github.com/prometheus/client_golang/prometheus"

var (
	postedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventloopd",
			Subsystem: "queue",
			Name:      "posted_total",
			Help:      "Events accepted by the queue",
		},
		[]string{"queue"},
	)

	deliveredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventloopd",
			Subsystem: "queue",
			Name:      "delivered_total",
			Help:      "Events dequeued by the consumer",
		},
		[]string{"queue"},
	)

	droppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventloopd",
			Subsystem: "queue",
			Name:      "dropped_total",
			Help:      "Events rejected or discarded, by reason",
		},
		[]string{"queue", "reason"},
	)

	queueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "eventloopd",
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Posted but not yet dequeued events",
		},
		[]string{"queue"},
	)

	sendWaitSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "eventloopd",
			Subsystem: "queue",
			Name:      "send_wait_seconds",
			Help:      "Time synchronous senders spent blocked until their event was dequeued",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"queue"},
	)
)

func init() {
	prometheus.MustRegister(postedTotal, deliveredTotal, droppedTotal, queueDepth, sendWaitSeconds)
}

const (
	reasonFull    = "full"
	reasonClosed  = "closed"
	reasonCleared = "cleared"
)

// queueMetrics holds the children curried with one queue label.
type queueMetrics struct {
	posted    prometheus.Counter
	delivered prometheus.Counter
	full      prometheus.Counter
	closed    prometheus.Counter
	cleared   prometheus.Counter
	depth     prometheus.Gauge
	sendWait  prometheus.Observer
}

func newQueueMetrics(name string) queueMetrics {
	return queueMetrics{
		posted:    postedTotal.WithLabelValues(name),
		delivered: deliveredTotal.WithLabelValues(name),
		full:      droppedTotal.WithLabelValues(name, reasonFull),
		closed:    droppedTotal.WithLabelValues(name, reasonClosed),
		cleared:   droppedTotal.WithLabelValues(name, reasonCleared),
		depth:     queueDepth.WithLabelValues(name),
		sendWait:  sendWaitSeconds.WithLabelValues(name),
	}
}
