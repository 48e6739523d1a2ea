package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the migrator's Prometheus collectors on a private registry.
type Metrics struct {
	registry          *prometheus.Registry
	tickets           *prometheus.CounterVec
	commentWrites     *prometheus.CounterVec
	finalStatusMissed prometheus.Counter
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	errors            *prometheus.CounterVec
}

// NewMetrics registers collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tickets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "migrator_tickets_total",
			Help: "Source tickets processed, by outcome and failing stage.",
		}, []string{"outcome", "stage"}),
		commentWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "migrator_comment_writes_total",
			Help: "Comment updates issued against Target, by outcome.",
		}, []string{"outcome"}),
		finalStatusMissed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "migrator_final_status_missing_total",
			Help: "Tickets created on Target whose final status update failed.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "migrator_http_requests_total",
			Help: "Control API requests.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "migrator_http_request_duration_seconds",
			Help:    "Control API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "migrator_http_errors_total",
			Help: "Control API errors by code.",
		}, []string{"path", "method", "code"}),
	}
	m.registry.MustRegister(
		m.tickets,
		m.commentWrites,
		m.finalStatusMissed,
		m.requests,
		m.requestDuration,
		m.errors,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordTicket counts a finished ticket migration. stage is empty on success.
func (m *Metrics) RecordTicket(success bool, stage string) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.tickets.WithLabelValues(outcome, stage).Inc()
}

// RecordCommentWrites counts comment updates of one ticket.
func (m *Metrics) RecordCommentWrites(attempted, failed int) {
	if m == nil {
		return
	}
	m.commentWrites.WithLabelValues("success").Add(float64(attempted - failed))
	m.commentWrites.WithLabelValues("failure").Add(float64(failed))
}

// RecordFinalStatusMissed counts a ticket left without its final status.
func (m *Metrics) RecordFinalStatusMissed() {
	if m == nil {
		return
	}
	m.finalStatusMissed.Inc()
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}
