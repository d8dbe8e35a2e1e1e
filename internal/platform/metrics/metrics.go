// Package metrics exposes Prometheus collectors for ledger operations and HTTP latency.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels, re-exported for callers outside the service layer.
const (
	OutcomeSuccess  = portssvc.OutcomeSuccess
	OutcomeRejected = portssvc.OutcomeRejected
	OutcomeError    = portssvc.OutcomeError
	OutcomeReplayed = portssvc.OutcomeReplayed
)

// Registry owns the collectors of one process. Tests create their own.
type Registry struct {
	reg        *prometheus.Registry
	operations *prometheus.CounterVec
	amounts    *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewRegistry creates a registry with Go runtime and process collectors attached.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "securepay",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		amounts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "securepay",
			Subsystem: "ledger",
			Name:      "amount_total",
			Help:      "Minor units moved by successful ledger operations.",
		}, []string{"operation"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "securepay",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

// RecordOperation counts one ledger operation. Amount is added only on success.
func (r *Registry) RecordOperation(operation string, outcome string, amount int64) {
	r.operations.WithLabelValues(operation, outcome).Inc()
	if outcome == OutcomeSuccess && amount > 0 {
		r.amounts.WithLabelValues(operation).Add(float64(amount))
	}
}

// Middleware observes request latency labelled by the matched route template.
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.latency.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
