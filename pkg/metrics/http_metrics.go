package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCounter counts all HTTP requests with labels
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	// RequestDurationHistogram records request duration in seconds
	RequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	// InteractionCounter counts chatbot interactions per tenant and kind.
	InteractionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_interactions_total",
			Help: "Total number of chatbot interactions",
		},
		[]string{"tenant", "kind"},
	)

	// MatchCounter counts FAQ matching outcomes per tenant.
	MatchCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_faq_match_total",
			Help: "FAQ matching outcomes (matched or fallback)",
		},
		[]string{"tenant", "outcome"},
	)

	// QuotaDeniedCounter counts creations denied by plan limits.
	QuotaDeniedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_quota_denied_total",
			Help: "Creations denied because a plan limit was reached",
		},
		[]string{"tenant", "resource"},
	)
)

// HTTPMetrics holds configuration and state for HTTP metrics collection
type HTTPMetrics struct {
	ServiceName string
	initialized bool
}

// NewHTTPMetrics creates a new HTTP metrics collector for a specific service
func NewHTTPMetrics(serviceName string) *HTTPMetrics {
	m := &HTTPMetrics{
		ServiceName: serviceName,
	}
	m.register()
	return m
}

// register registers the prometheus metrics if they haven't been registered already
func (m *HTTPMetrics) register() {
	if !m.initialized {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDurationHistogram)
		prometheus.MustRegister(InteractionCounter)
		prometheus.MustRegister(MatchCounter)
		prometheus.MustRegister(QuotaDeniedCounter)
		m.initialized = true
	}
}

// Middleware creates an Echo middleware function that records HTTP request metrics
func (m *HTTPMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			method := c.Request().Method
			path := c.Path()
			statusStr := strconv.Itoa(status)

			RequestCounter.WithLabelValues(m.ServiceName, method, path, statusStr).Inc()

			duration := time.Since(start).Seconds()
			RequestDurationHistogram.WithLabelValues(m.ServiceName, method, path, statusStr).Observe(duration)

			return err
		}
	}
}

// GetPrometheusHandler returns an HTTP handler for exposing Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}
