// Package metrics exposes classification counters on a private Prometheus
// registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bot_classifier"

// Metrics implements core.Recorder
type Metrics struct {
	registry        *prometheus.Registry
	classifications *prometheus.CounterVec
	scores          prometheus.Histogram
	crmRequests     *prometheus.CounterVec
}

// New creates and registers the collectors. Process and Go runtime
// collectors are included when withRuntime is set.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Classified addresses by category and result source.",
		}, []string{"category", "source"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score",
			Help:      "Distribution of bot scores.",
			Buckets:   []float64{0, 15, 30, 50, 70, 100, 150, 200, 300},
		}),
		crmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crm_requests_total",
			Help:      "CRM API calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}

	m.registry.MustRegister(m.classifications, m.scores, m.crmRequests)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// ObserveClassification counts one classification and records its score
func (m *Metrics) ObserveClassification(category, source string, score int) {
	m.classifications.WithLabelValues(category, source).Inc()
	m.scores.Observe(float64(score))
}

// ObserveCRMRequest counts one CRM call
func (m *Metrics) ObserveCRMRequest(operation, outcome string) {
	m.crmRequests.WithLabelValues(operation, outcome).Inc()
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
