package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mall-api/internal/events"
)

// Metrics holds all Prometheus metrics for the application. Each instance owns
// its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	RateLimited     prometheus.Counter
	Signups         prometheus.Counter
	Logins          *prometheus.CounterVec
	EntityMutations *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mall_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mall_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "mall_rate_limited_requests_total",
			Help: "Requests rejected by the per-client rate limiter",
		}),
		Signups: factory.NewCounter(prometheus.CounterOpts{
			Name: "mall_signups_total",
			Help: "Identities created through signup",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mall_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		EntityMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mall_entity_mutations_total",
			Help: "Entity store writes by entity and action",
		}, []string{"entity", "action"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveLogin(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// Publish counts domain events, so Metrics can sit in an events.Fanout next to
// the audit log.
func (m *Metrics) Publish(_ context.Context, e events.Event) error {
	if e.Action == events.ActionSignedUp {
		m.Signups.Inc()
	}
	m.EntityMutations.WithLabelValues(e.EntityType, string(e.Action)).Inc()
	return nil
}
