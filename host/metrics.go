package host

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "atri"

// Metrics holds the host instrumentation.
type Metrics struct {
	TasksSpawned   prometheus.Counter
	TasksCompleted prometheus.Counter
	TasksFailed    prometheus.Counter
	TasksInFlight  prometheus.Gauge
	Polls          prometheus.Counter
	Wakes          prometheus.Counter

	EventsPublished *prometheus.CounterVec
	Listeners       prometheus.Gauge
	Waiters         prometheus.Gauge

	Transitions *prometheus.CounterVec
}

// NewMetrics creates the host metrics and registers them on reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TasksSpawned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "executor", Name: "tasks_spawned_total",
			Help: "Futures handed to the executor.",
		}),
		TasksCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "executor", Name: "tasks_completed_total",
			Help: "Spawned futures that ran to completion.",
		}),
		TasksFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "executor", Name: "tasks_failed_total",
			Help: "Spawned futures that panicked or were dropped unfinished.",
		}),
		TasksInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "executor", Name: "tasks_in_flight",
			Help: "Spawned futures not yet finished.",
		}),
		Polls: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "executor", Name: "polls_total",
			Help: "Polls of spawned futures.",
		}),
		Wakes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "executor", Name: "wakes_total",
			Help: "Wake-ups received for spawned futures.",
		}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "bus", Name: "events_published_total",
			Help: "Events dispatched to listeners.",
		}, []string{"kind"}),
		Listeners: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "bus", Name: "listeners",
			Help: "Registered listeners.",
		}),
		Waiters: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "bus", Name: "waiters",
			Help: "Pending next-event waiters.",
		}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "plugin", Name: "transitions_total",
			Help: "Plugin lifecycle transitions.",
		}, []string{"plugin", "transition"}),
	}
}
