package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Automation cycle metrics
	CyclesTotal    prometheus.Counter
	CycleDuration  prometheus.Histogram
	RoutinesFired  *prometheus.CounterVec
	RoutineSkips   *prometheus.CounterVec
	DeliveryFailed prometheus.Counter

	// Intelligence metrics
	TasksCreated    *prometheus.CounterVec
	HighRiskClients prometheus.Gauge
	ScoringDuration prometheus.Histogram

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all application metrics under the namespace
// on the default registry.
func New(namespace string) *Metrics {
	return NewWith(prometheus.DefaultRegisterer, namespace)
}

// NewWith registers the metrics on the given registerer. Tests pass a
// fresh registry so repeated construction cannot collide.
func NewWith(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "automation_cycles_total",
			Help:      "Total number of completed automation cycles",
		}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "automation_cycle_duration_seconds",
			Help:      "Time spent running one automation cycle",
			Buckets:   []float64{.05, .1, .3, .5, 1, 2.5, 5, 10, 30},
		}),
		RoutinesFired: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routines_fired_total",
			Help:      "Total number of fired automation routines",
		}, []string{"routine"}),
		RoutineSkips: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routine_skips_total",
			Help:      "Total number of skipped routine firings",
		}, []string{"routine", "reason"}),
		DeliveryFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Total number of delivery sink failures",
		}),
		TasksCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "therapist_tasks_created_total",
			Help:      "Total number of tasks created by the alert generator",
		}, []string{"type"}),
		HighRiskClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "high_risk_clients",
			Help:      "High-risk clients found during the last cycle",
		}),
		ScoringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoring_duration_seconds",
			Help:      "Time spent in the risk and health scoring engine per cycle",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests processed",
		}, []string{"method", "route", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.05, .1, .3, .5, .8, 1, 2, 5},
		}, []string{"method", "route"}),
	}
}
