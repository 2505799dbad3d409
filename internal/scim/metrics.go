package scim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the dispatch-scoped counters and histograms, namespaced
// "scimcore" the way the teacher's internal/metrics/prometheus.go
// namespaces every other service's HTTP metrics under "openidx".
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics registers the dispatch metrics against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scimcore",
			Name:      "requests_total",
			Help:      "Total SCIM requests processed by endpoint, method, and status.",
		}, []string{"endpoint", "method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scimcore",
			Name:      "request_duration_seconds",
			Help:      "SCIM request latency by endpoint and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scimcore",
			Name:      "errors_total",
			Help:      "Total SCIM errors by scimType.",
		}, []string{"scim_type"}),
	}
}
