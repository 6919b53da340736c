package factory

import (
	"time"

	"github.com/funneltechie/inboxreadybotclassifier/internal/config"
	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/funneltechie/inboxreadybotclassifier/internal/utils"
	"github.com/funneltechie/inboxreadybotclassifier/internal/whitelist"
	"go.uber.org/zap"
)

// ServiceFactory creates the classification service and its helpers
type ServiceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(cfg *config.Config, logger *zap.Logger) *ServiceFactory {
	return &ServiceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextProcessor creates a new TextProcessor
func (f *ServiceFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// CreateTrustList creates the trusted-domain checker from configuration
func (f *ServiceFactory) CreateTrustList() *whitelist.Checker {
	return whitelist.NewChecker(f.cfg.GetTrustedDomains(), f.logger)
}

// CreateService wires the classification service. cache, crm and recorder
// may be nil.
func (f *ServiceFactory) CreateService(
	cache core.CacheRepository,
	crm core.CRMClient,
	trust *whitelist.Checker,
	recorder core.Recorder,
	text *utils.TextProcessor,
	cacheTTL time.Duration,
) *core.ClassificationService {
	var trustList core.TrustList
	if trust != nil && trust.Len() > 0 {
		trustList = trust
	}
	return core.NewClassificationService(
		cache,
		crm,
		trustList,
		recorder,
		text,
		f.logger,
		f.cfg.GetBool("cache.enabled"),
		cacheTTL,
		f.cfg.GetString("crm.category_field"),
	)
}
