package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/funneltechie/inboxreadybotclassifier/internal/adapters/filter"
	"github.com/funneltechie/inboxreadybotclassifier/internal/config"
	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/funneltechie/inboxreadybotclassifier/internal/factory"
	"github.com/funneltechie/inboxreadybotclassifier/internal/logging"
	"github.com/funneltechie/inboxreadybotclassifier/internal/metrics"
	"github.com/funneltechie/inboxreadybotclassifier/internal/ports"
	"github.com/funneltechie/inboxreadybotclassifier/internal/utils"
	"github.com/funneltechie/inboxreadybotclassifier/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container.
// An empty configPath searches the default locations.
func BuildContainer(configPath string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		if configPath != "" {
			return config.NewFromFile(configPath)
		}
		return config.New()
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideService(container); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(factory.NewMetricsFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.MetricsFactory) *metrics.Metrics {
		return f.CreateMetrics()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.Recorder); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (time.Duration, error) {
		return f.GetCacheTTL()
	}); err != nil {
		return nil, err
	}

	// Register CRM client
	if err := container.Provide(factory.NewCRMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CRMFactory) (core.CRMClient, error) {
		return f.CreateCRMClient()
	}); err != nil {
		return nil, err
	}

	// Register classification service
	if err := container.Provide(func(
		f *factory.ServiceFactory,
		cache core.CacheRepository,
		crm core.CRMClient,
		trust *whitelist.Checker,
		recorder core.Recorder,
		text *utils.TextProcessor,
		cacheTTL time.Duration,
	) *core.ClassificationService {
		return f.CreateService(cache, crm, trust, recorder, text, cacheTTL)
	}); err != nil {
		return nil, err
	}

	// Register filters
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FilterFactory) (*filter.WebhookFilter, error) {
		return f.CreateWebhookFilter()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FilterFactory) *filter.SMTPFilter {
		return f.CreateSMTPFilter()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		logger *zap.Logger,
		webhook *filter.WebhookFilter,
		smtp *filter.SMTPFilter,
	) []ports.EmailFilter {
		filters := []ports.EmailFilter{webhook}
		if smtp != nil {
			filters = append(filters, smtp)
		} else {
			logger.Info("SMTP content filter disabled")
		}
		return filters
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideService registers the pieces shared by the daemon and the CLI
func provideService(container *dig.Container) error {
	if err := container.Provide(factory.NewServiceFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ServiceFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}
	return container.Provide(func(f *factory.ServiceFactory) *whitelist.Checker {
		return f.CreateTrustList()
	})
}
