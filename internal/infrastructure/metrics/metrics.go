package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the booking engine collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	reg *prometheus.Registry

	AvailabilityChecks *prometheus.CounterVec
	Reservations       *prometheus.CounterVec
	Cancellations      *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		AvailabilityChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_availability_checks_total",
			Help: "Availability checks by restaurant and outcome.",
		}, []string{"restaurant", "result"}),
		Reservations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_reservations_total",
			Help: "Reservation attempts by restaurant and resulting status.",
		}, []string{"restaurant", "status"}),
		Cancellations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_cancellations_total",
			Help: "Cancellation attempts by resulting status.",
		}, []string{"status"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "booking_operation_duration_seconds",
			Help:    "Duration of booking engine operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

func (m *Metrics) Availability(restaurant, result string) {
	if m == nil {
		return
	}
	m.AvailabilityChecks.WithLabelValues(restaurant, result).Inc()
}

func (m *Metrics) Reservation(restaurant, status string) {
	if m == nil {
		return
	}
	m.Reservations.WithLabelValues(restaurant, status).Inc()
}

func (m *Metrics) Cancellation(status string) {
	if m == nil {
		return
	}
	m.Cancellations.WithLabelValues(status).Inc()
}

// Observe records the time since start under op.
func (m *Metrics) Observe(op string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
