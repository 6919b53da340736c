package factory

import (
	"io"

	"github.com/funneltechie/inboxreadybotclassifier/internal/adapters/filter"
	"github.com/funneltechie/inboxreadybotclassifier/internal/config"
	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/funneltechie/inboxreadybotclassifier/internal/metrics"
	"github.com/funneltechie/inboxreadybotclassifier/internal/utils"
	"go.uber.org/zap"
)

// FilterFactory creates the intake front-ends
type FilterFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.ClassificationService
	text    *utils.TextProcessor
	metrics *metrics.Metrics
}

// NewFilterFactory creates a new filter factory. m may be nil.
func NewFilterFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.ClassificationService,
	text *utils.TextProcessor,
	m *metrics.Metrics,
) *FilterFactory {
	return &FilterFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
		text:    text,
		metrics: m,
	}
}

// CreateWebhookFilter creates the HTTP webhook intake
func (f *FilterFactory) CreateWebhookFilter() (*filter.WebhookFilter, error) {
	serverCfg, err := f.cfg.GetServer()
	if err != nil {
		return nil, err
	}
	webhookCfg := f.cfg.GetWebhook()
	if webhookCfg.APISecret == "" {
		f.logger.Warn("No webhook API secret configured, every request will be rejected")
	}

	opts := filter.WebhookOptions{
		ListenAddress:     serverCfg.ListenAddress,
		APISecret:         webhookCfg.APISecret,
		DefaultAPIKey:     f.cfg.GetString("crm.default_api_key"),
		RateLimitEnabled:  webhookCfg.RateLimitEnabled,
		RequestsPerMinute: webhookCfg.RequestsPerMinute,
		Burst:             webhookCfg.Burst,
		ReadTimeout:       serverCfg.ReadTimeout,
		WriteTimeout:      serverCfg.WriteTimeout,
		ShutdownTimeout:   serverCfg.ShutdownTimeout,
	}
	if f.metrics != nil {
		opts.MetricsHandler = f.metrics.Handler()
	}

	return filter.NewWebhookFilter(f.service, f.logger, opts), nil
}

// CreateSMTPFilter creates the SMTP content filter, or nil when disabled
func (f *FilterFactory) CreateSMTPFilter() *filter.SMTPFilter {
	smtpCfg := f.cfg.GetSMTP()
	if !smtpCfg.Enabled {
		return nil
	}
	return filter.NewSMTPFilter(f.service, f.text, f.logger, smtpCfg)
}

// CreateCliFilter creates the command-line front-end writing to out
func (f *FilterFactory) CreateCliFilter(out io.Writer, verbose, jsonOutput bool) (*filter.CliFilter, error) {
	return filter.NewCliFilter(f.service, f.logger, out, verbose, jsonOutput)
}
