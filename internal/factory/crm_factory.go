package factory

import (
	"github.com/funneltechie/inboxreadybotclassifier/internal/adapters/crm"
	"github.com/funneltechie/inboxreadybotclassifier/internal/config"
	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"go.uber.org/zap"
)

// CRMFactory creates the GoHighLevel client
type CRMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCRMFactory creates a new CRM factory
func NewCRMFactory(cfg *config.Config, logger *zap.Logger) *CRMFactory {
	return &CRMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCRMClient creates the CRM client, or nil when write-back is disabled
func (f *CRMFactory) CreateCRMClient() (core.CRMClient, error) {
	crmCfg, err := f.cfg.GetCRM()
	if err != nil {
		return nil, err
	}
	if !crmCfg.Enabled {
		f.logger.Warn("CRM write-back disabled")
		return nil, nil
	}

	f.logger.Info("Creating GoHighLevel client",
		zap.String("base_url", crmCfg.BaseURL),
		zap.Int("retry_max", crmCfg.RetryMax),
		zap.String("category_field", crmCfg.CategoryField))

	return crm.NewGoHighLevelClient(crm.Options{
		BaseURL:      crmCfg.BaseURL,
		Timeout:      crmCfg.Timeout,
		RetryMax:     crmCfg.RetryMax,
		RetryWaitMin: crmCfg.RetryWaitMin,
		RetryWaitMax: crmCfg.RetryWaitMax,
		FieldTTL:     crmCfg.FieldCacheTTL,
	}, f.logger), nil
}

// GetCategoryField returns the custom field the category is written to
func (f *CRMFactory) GetCategoryField() string {
	return f.cfg.GetString("crm.category_field")
}
