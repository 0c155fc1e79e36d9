package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics коллектор метрик сервиса.
// Все методы безопасны для nil-получателя: при выключенных метриках в слои
// передается nil и вызовы ничего не делают.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbQueryErrors   *prometheus.CounterVec
	dbConnections   *prometheus.GaugeVec

	bookingsCreated   *prometheus.CounterVec
	bookingConflicts  *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	availabilityFails *prometheus.CounterVec
	creditsGranted    prometheus.Counter
	creditsSpent      prometheus.Counter
}

// New создает коллектор с собственным registry
func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: labels,
			Buckets:     []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		dbQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Database query errors",
			ConstLabels: labels,
		}, []string{"operation"}),
		dbConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections",
			Help:        "Database connection pool state",
			ConstLabels: labels,
		}, []string{"state"}),
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Bookings created",
			ConstLabels: labels,
		}, []string{"lesson_type"}),
		bookingConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_conflicts_total",
			Help:        "Writes rejected because the slot was taken concurrently",
			ConstLabels: labels,
		}, []string{"operation"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_status_transitions_total",
			Help:        "Booking status transitions",
			ConstLabels: labels,
		}, []string{"to"}),
		availabilityFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "availability_fail_open_total",
			Help:        "Availability checks answered optimistically because bookings could not be read",
			ConstLabels: labels,
		}, []string{"mode"}),
		creditsGranted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "lesson_credits_granted_total",
			Help:        "Lesson credits granted",
			ConstLabels: labels,
		}),
		creditsSpent: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "lesson_credits_spent_total",
			Help:        "Lesson credits spent",
			ConstLabels: labels,
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueryDuration,
		m.dbQueryErrors,
		m.dbConnections,
		m.bookingsCreated,
		m.bookingConflicts,
		m.statusTransitions,
		m.availabilityFails,
		m.creditsGranted,
		m.creditsSpent,
	)

	return m
}

// Handler HTTP handler для /metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry возвращает registry (для тестов)
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.dbQueryErrors.WithLabelValues(operation).Inc()
	}
}

// SetDBConnections обновляет состояние пула соединений
func (m *Metrics) SetDBConnections(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.dbConnections.WithLabelValues("open").Set(float64(open))
	m.dbConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.dbConnections.WithLabelValues("idle").Set(float64(idle))
}

func (m *Metrics) IncBookingCreated(lessonType string) {
	if m == nil {
		return
	}
	m.bookingsCreated.WithLabelValues(lessonType).Inc()
}

func (m *Metrics) IncBookingConflict(operation string) {
	if m == nil {
		return
	}
	m.bookingConflicts.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncStatusTransition(to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(to).Inc()
}

// IncAvailabilityFailOpen mode: single | batch
func (m *Metrics) IncAvailabilityFailOpen(mode string) {
	if m == nil {
		return
	}
	m.availabilityFails.WithLabelValues(mode).Inc()
}

func (m *Metrics) AddCreditsGranted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.creditsGranted.Add(float64(n))
}

func (m *Metrics) AddCreditsSpent(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.creditsSpent.Add(float64(n))
}
