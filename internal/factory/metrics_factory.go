package factory

import (
	"github.com/funneltechie/inboxreadybotclassifier/internal/config"
	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/funneltechie/inboxreadybotclassifier/internal/metrics"
)

// MetricsFactory creates the Prometheus collectors
type MetricsFactory struct {
	cfg *config.Config
}

// NewMetricsFactory creates a new metrics factory
func NewMetricsFactory(cfg *config.Config) *MetricsFactory {
	return &MetricsFactory{cfg: cfg}
}

// CreateMetrics returns the collectors, or nil when metrics are disabled
func (f *MetricsFactory) CreateMetrics() *metrics.Metrics {
	if !f.cfg.GetBool("metrics.enabled") {
		return nil
	}
	return metrics.New(f.cfg.GetBool("metrics.runtime"))
}

// Recorder adapts m to core.Recorder. A nil m yields a nil interface.
func Recorder(m *metrics.Metrics) core.Recorder {
	if m == nil {
		return nil
	}
	return m
}
