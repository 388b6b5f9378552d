// Package metrics exposes Prometheus metrics for the authentication service
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for login and signup attempts
const (
	ResultSuccess     = "success"
	ResultUnknownUser = "unknown_user"
	ResultBadPassword = "bad_password"
	ResultInvalid     = "invalid"
	ResultDuplicate   = "duplicate"
	ResultError       = "error"
)

// Metrics holds the service collectors and the registry they are registered with
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	logins          *prometheus.CounterVec
	signups         *prometheus.CounterVec
	logouts         prometheus.Counter
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Total number of login attempts by result",
		}, []string{"result"}),
		signups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_signup_attempts_total",
			Help: "Total number of signup attempts by result",
		}, []string{"result"}),
		logouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth_logouts_total",
			Help: "Total number of logouts",
		}),
	}
}

// Registry returns the registry the collectors are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveLogin counts a login attempt
func (m *Metrics) ObserveLogin(result string) {
	m.logins.WithLabelValues(result).Inc()
}

// ObserveSignup counts a signup attempt
func (m *Metrics) ObserveSignup(result string) {
	m.signups.WithLabelValues(result).Inc()
}

// ObserveLogout counts a logout
func (m *Metrics) ObserveLogout() {
	m.logouts.Inc()
}

// Middleware records the latency of every request labelled by its chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
