// Package metrics holds the Prometheus collectors of the timer manager and daemon.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "business_calendar"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Calculations    *prometheus.CounterVec
	TimersScheduled prometheus.Counter
	TimersFired     prometheus.Counter
	TimersPending   prometheus.Gauge
	CheckDuration   prometheus.Histogram
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Business time calculations by result.",
		}, []string{"result"}),
		TimersScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timers_scheduled_total",
			Help:      "Timers scheduled.",
		}),
		TimersFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timers_fired_total",
			Help:      "Timers that reached their due instant.",
		}),
		TimersPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "timers_pending",
			Help:      "Timers not yet fired.",
		}),
		CheckDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Duration of one daemon timer check.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.Calculations, m.TimersScheduled, m.TimersFired, m.TimersPending, m.CheckDuration)
	return m
}

// ObserveCalculation counts one calculation
func (m *Metrics) ObserveCalculation(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Calculations.WithLabelValues(result).Inc()
}

// TimerScheduled counts a new timer
func (m *Metrics) TimerScheduled() {
	if m == nil {
		return
	}
	m.TimersScheduled.Inc()
}

// TimersFiredAdd counts n fired timers
func (m *Metrics) TimersFiredAdd(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TimersFired.Add(float64(n))
}

// SetPending sets the number of pending timers
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.TimersPending.Set(float64(n))
}

// ObserveCheck records the duration of a daemon check started at start
func (m *Metrics) ObserveCheck(start time.Time) {
	if m == nil {
		return
	}
	m.CheckDuration.Observe(time.Since(start).Seconds())
}

// Handler exposes the metrics of g in the Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
