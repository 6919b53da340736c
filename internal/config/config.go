package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/bot-classifier/")
	v.AddConfigPath("$HOME/.bot-classifier")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromFile loads configuration from an explicit file path
func NewFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("BOT_CLASSIFIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Webhook defaults
	v.SetDefault("server.listen_address", "0.0.0.0:8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("webhook.api_secret", "")
	v.SetDefault("webhook.rate_limit.enabled", true)
	v.SetDefault("webhook.rate_limit.requests_per_minute", 120)
	v.SetDefault("webhook.rate_limit.burst", 20)

	// SMTP content filter defaults
	v.SetDefault("server.smtp.enabled", false)
	v.SetDefault("server.smtp.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.smtp.domain", "localhost")
	v.SetDefault("server.smtp.max_message_bytes", 25*1024*1024)
	v.SetDefault("server.smtp.reject_bots", false)
	v.SetDefault("server.smtp.relay.enabled", true)
	v.SetDefault("server.smtp.relay.address", "127.0.0.1")
	v.SetDefault("server.smtp.relay.port", 10026)
	v.SetDefault("server.smtp.headers.category", "X-Bot-Category")
	v.SetDefault("server.smtp.headers.score", "X-Bot-Score")
	v.SetDefault("server.smtp.headers.reasons", "X-Bot-Reasons")

	// CRM defaults
	v.SetDefault("crm.enabled", true)
	v.SetDefault("crm.base_url", "https://rest.gohighlevel.com/v1")
	v.SetDefault("crm.default_api_key", "")
	v.SetDefault("crm.category_field", "contact.email_category")
	v.SetDefault("crm.timeout", "10s")
	v.SetDefault("crm.retry_max", 3)
	v.SetDefault("crm.retry_wait_min", "500ms")
	v.SetDefault("crm.retry_wait_max", "5s")
	v.SetDefault("crm.field_cache_ttl", "1h")

	// Classifier defaults
	v.SetDefault("classifier.trusted_domains", []string{})

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/bot_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/bot_classifier")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.runtime", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// Set overrides a value, taking precedence over file and environment
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
