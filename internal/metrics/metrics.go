// Package metrics holds the Prometheus collectors for the storefront.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/tourbooking/internal/datasource/rest"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tourbooking"

type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	sessionEvents   *prometheus.CounterVec
	bookingEvents   *prometheus.CounterVec
}

// New registers every collector on a private registry, plus the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "backend", Name: "calls_total",
			Help: "Calls to the booking backend by resource, method and outcome.",
		}, []string{"resource", "method", "outcome"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "backend", Name: "call_duration_seconds",
			Help:    "Booking backend latency by resource.",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource"}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "events_total",
			Help: "Session lifecycle events by kind.",
		}, []string{"kind"}),
		bookingEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "booking", Name: "events_total",
			Help: "Booking events by type and publish outcome.",
		}, []string{"type", "outcome"}),
	}
	m.registry.MustRegister(
		m.requests, m.requestDuration,
		m.backendCalls, m.backendDuration,
		m.sessionEvents, m.bookingEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

var _ rest.Observer = (*Metrics)(nil)

// ObserveBackendCall records one backend round trip; status 0 means the
// request never got a response.
func (m *Metrics) ObserveBackendCall(resource, method string, status int, elapsed time.Duration) {
	m.backendCalls.WithLabelValues(resource, method, Outcome(status)).Inc()
	m.backendDuration.WithLabelValues(resource).Observe(elapsed.Seconds())
}

func (m *Metrics) SessionEvent(kind string) {
	m.sessionEvents.WithLabelValues(kind).Inc()
}

func (m *Metrics) BookingEvent(eventType string, err error) {
	outcome := "published"
	if err != nil {
		outcome = "failed"
	}
	m.bookingEvents.WithLabelValues(eventType, outcome).Inc()
}

func Outcome(status int) string {
	switch {
	case status == 0:
		return "transport_error"
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	default:
		return "ok"
	}
}
