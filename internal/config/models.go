package config

import (
	"time"
)

// ServerConfig represents the HTTP listener configuration
type ServerConfig struct {
	ListenAddress   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// WebhookConfig represents the webhook authentication and rate limits
type WebhookConfig struct {
	APISecret         string
	RateLimitEnabled  bool
	RequestsPerMinute int
	Burst             int
}

// CRMConfig represents the GoHighLevel client configuration
type CRMConfig struct {
	Enabled       bool
	BaseURL       string
	DefaultAPIKey string
	CategoryField string
	Timeout       time.Duration
	RetryMax      int
	RetryWaitMin  time.Duration
	RetryWaitMax  time.Duration
	FieldCacheTTL time.Duration
}

// SMTPConfig represents the SMTP content filter configuration
type SMTPConfig struct {
	Enabled         bool
	ListenAddress   string
	Domain          string
	MaxMessageBytes int64
	RejectBots      bool
	RelayEnabled    bool
	RelayAddress    string
	RelayPort       int
	CategoryHeader  string
	ScoreHeader     string
	ReasonsHeader   string
}

// durations reads several duration keys, stopping at the first invalid one
func (c *Config) durations(keys ...string) ([]time.Duration, error) {
	out := make([]time.Duration, len(keys))
	for i, key := range keys {
		d, err := c.GetDuration(key)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// GetServer returns the HTTP listener configuration
func (c *Config) GetServer() (ServerConfig, error) {
	d, err := c.durations("server.read_timeout", "server.write_timeout", "server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		ReadTimeout:     d[0],
		WriteTimeout:    d[1],
		ShutdownTimeout: d[2],
	}, nil
}

// GetWebhook returns the webhook configuration
func (c *Config) GetWebhook() WebhookConfig {
	return WebhookConfig{
		APISecret:         c.GetString("webhook.api_secret"),
		RateLimitEnabled:  c.GetBool("webhook.rate_limit.enabled"),
		RequestsPerMinute: c.GetInt("webhook.rate_limit.requests_per_minute"),
		Burst:             c.GetInt("webhook.rate_limit.burst"),
	}
}

// GetCRM returns the CRM configuration
func (c *Config) GetCRM() (CRMConfig, error) {
	d, err := c.durations("crm.timeout", "crm.retry_wait_min", "crm.retry_wait_max", "crm.field_cache_ttl")
	if err != nil {
		return CRMConfig{}, err
	}
	return CRMConfig{
		Enabled:       c.GetBool("crm.enabled"),
		BaseURL:       c.GetString("crm.base_url"),
		DefaultAPIKey: c.GetString("crm.default_api_key"),
		CategoryField: c.GetString("crm.category_field"),
		Timeout:       d[0],
		RetryMax:      c.GetInt("crm.retry_max"),
		RetryWaitMin:  d[1],
		RetryWaitMax:  d[2],
		FieldCacheTTL: d[3],
	}, nil
}

// GetSMTP returns the SMTP content filter configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:         c.GetBool("server.smtp.enabled"),
		ListenAddress:   c.GetString("server.smtp.listen_address"),
		Domain:          c.GetString("server.smtp.domain"),
		MaxMessageBytes: int64(c.GetInt("server.smtp.max_message_bytes")),
		RejectBots:      c.GetBool("server.smtp.reject_bots"),
		RelayEnabled:    c.GetBool("server.smtp.relay.enabled"),
		RelayAddress:    c.GetString("server.smtp.relay.address"),
		RelayPort:       c.GetInt("server.smtp.relay.port"),
		CategoryHeader:  c.GetString("server.smtp.headers.category"),
		ScoreHeader:     c.GetString("server.smtp.headers.score"),
		ReasonsHeader:   c.GetString("server.smtp.headers.reasons"),
	}
}

// GetTrustedDomains returns domains that bypass classification
func (c *Config) GetTrustedDomains() []string {
	return c.GetStringSlice("classifier.trusted_domains")
}
