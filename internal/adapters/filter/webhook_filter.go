package filter

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const apiKeyHeader = "x-api-key"

// WebhookOptions configures the HTTP intake
type WebhookOptions struct {
	ListenAddress     string
	APISecret         string
	DefaultAPIKey     string
	RateLimitEnabled  bool
	RequestsPerMinute int
	Burst             int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
	// MetricsHandler is mounted at /metrics when set
	MetricsHandler http.Handler
}

// WebhookFilter receives CRM workflow webhooks, classifies the contact's
// address and writes the category back to the contact
type WebhookFilter struct {
	service  *core.ClassificationService
	logger   *zap.Logger
	opts     WebhookOptions
	limiter  *ipLimiter
	server   *http.Server
	listener net.Listener
}

type skipResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type failureResponse struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Error      string   `json:"error,omitempty"`
	Email      string   `json:"email"`
	BotScore   int      `json:"bot_score"`
	Category   string   `json:"category"`
	ReasonTags []string `json:"reason_tags"`
}

type debugInfo struct {
	Entropy         string `json:"entropy"`
	DigitRatio      string `json:"digitRatio"`
	LocalPartLength int    `json:"localPartLength"`
	Domain          string `json:"domain"`
	DotCount        int    `json:"dotCount"`
}

type successResponse struct {
	Success     bool                   `json:"success"`
	Email       string                 `json:"email"`
	BotScore    int                    `json:"bot_score"`
	Category    string                 `json:"category"`
	ReasonTags  []string               `json:"reason_tags"`
	ContactID   string                 `json:"contactId"`
	FieldID     string                 `json:"fieldId"`
	GHLUpdated  bool                   `json:"ghlUpdated"`
	GHLResponse map[string]interface{} `json:"ghlResponse"`
	Debug       debugInfo              `json:"debug"`
}

// NewWebhookFilter creates a new webhook intake
func NewWebhookFilter(service *core.ClassificationService, logger *zap.Logger, opts WebhookOptions) *WebhookFilter {
	f := &WebhookFilter{
		service: service,
		logger:  logger,
		opts:    opts,
	}
	if opts.RateLimitEnabled && opts.RequestsPerMinute > 0 {
		f.limiter = newIPLimiter(opts.RequestsPerMinute, opts.Burst)
	}
	return f
}

// Router builds the gin engine serving the webhook
func (f *WebhookFilter) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(f.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if f.opts.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(f.opts.MetricsHandler))
	}

	classify := r.Group("/")
	if f.limiter != nil {
		classify.Use(f.limiter.middleware(f.logger))
	}
	classify.POST("/", f.handleClassify)
	classify.POST("/classify", f.handleClassify)

	return r
}

// Start starts serving HTTP
func (f *WebhookFilter) Start() error {
	ln, err := net.Listen("tcp", f.opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.opts.ListenAddress, err)
	}
	f.listener = ln
	f.server = &http.Server{
		Handler:      f.Router(),
		ReadTimeout:  f.opts.ReadTimeout,
		WriteTimeout: f.opts.WriteTimeout,
	}

	f.logger.Info("Webhook server starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := f.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("Webhook server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound address once started
func (f *WebhookFilter) Addr() string {
	if f.listener == nil {
		return ""
	}
	return f.listener.Addr().String()
}

// Stop gracefully shuts the server down
func (f *WebhookFilter) Stop() error {
	if f.server == nil {
		return nil
	}
	timeout := f.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return f.server.Shutdown(ctx)
}

func (f *WebhookFilter) authorized(c *gin.Context) bool {
	got := c.GetHeader(apiKeyHeader)
	if f.opts.APISecret == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(f.opts.APISecret)) == 1
}

// pick reads a field from customData, falling back to the top level. Empty,
// zero and false values fall through like missing ones.
func pick(body map[string]interface{}, name string) string {
	if custom, ok := body["customData"].(map[string]interface{}); ok {
		if v := stringValue(custom[name]); v != "" {
			return v
		}
	}
	return stringValue(body[name])
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return ""
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func (f *WebhookFilter) handleClassify(c *gin.Context) {
	if !f.authorized(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	var body map[string]interface{}
	if err := json.NewDecoder(c.Request.Body).Decode(&body); err != nil {
		f.logger.Warn("Failed to decode webhook body", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error processing request",
			"error":   err.Error(),
		})
		return
	}

	contact := &core.Contact{
		ID:        pick(body, "contactId"),
		Email:     pick(body, "inputEmail"),
		FirstName: pick(body, "firstName"),
		LastName:  pick(body, "lastName"),
	}
	apiKey := pick(body, "apiKey")
	if apiKey == "" {
		apiKey = f.opts.DefaultAPIKey
	}

	if contact.ID == "" || apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Missing required fields",
			"debug":   body,
		})
		return
	}

	ctx := c.Request.Context()
	result, err := f.service.Classify(ctx, contact)
	switch {
	case errors.Is(err, core.ErrNoEmail):
		c.JSON(http.StatusOK, skipResponse{Success: true, Message: "No email provided — skipping classification"})
		return
	case errors.Is(err, core.ErrUnclassifiable):
		c.JSON(http.StatusOK, skipResponse{Success: true, Message: "Email address has no local part — skipping classification"})
		return
	case err != nil:
		f.logger.Error("Failed to classify contact", zap.String("contact_id", contact.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error processing request",
			"error":   err.Error(),
		})
		return
	}

	failure := failureResponse{
		Email:      result.Email,
		BotScore:   result.Score,
		Category:   string(result.Category),
		ReasonTags: result.Reasons,
	}

	outcome, err := f.service.Publish(ctx, contact.ID, apiKey, result)
	if errors.Is(err, core.ErrCRMDisabled) {
		f.logger.Debug("CRM write-back disabled, returning classification only",
			zap.String("contact_id", contact.ID))
		outcome, err = &core.UpdateOutcome{}, nil
	}
	if err != nil {
		if errors.Is(err, core.ErrUpdateFailed) {
			failure.Message = "Error updating GoHighLevel contact"
			failure.Error = err.Error()
			c.JSON(http.StatusInternalServerError, failure)
			return
		}
		f.logger.Warn("Category field unavailable",
			zap.String("contact_id", contact.ID),
			zap.String("field", f.service.CategoryField()),
			zap.Error(err))
		failure.Message = fmt.Sprintf("Custom field '%s' not found in GoHighLevel", f.service.CategoryField())
		c.JSON(http.StatusBadRequest, failure)
		return
	}

	d := result.Diagnostics
	c.JSON(http.StatusOK, successResponse{
		Success:     true,
		Email:       result.Email,
		BotScore:    result.Score,
		Category:    string(result.Category),
		ReasonTags:  result.Reasons,
		ContactID:   contact.ID,
		FieldID:     outcome.FieldID,
		GHLUpdated:  outcome.OK,
		GHLResponse: outcome.Body,
		Debug: debugInfo{
			Entropy:         toFixed(d.Entropy, 2),
			DigitRatio:      toFixed(d.DigitRatio*100, 1) + "%",
			LocalPartLength: d.LocalPartLength,
			Domain:          d.Domain,
			DotCount:        d.DotCount,
		},
	})
}

// toFixed formats x with the given number of decimals, rounding exact
// halves away from zero
func toFixed(x float64, decimals int) string {
	return new(big.Rat).SetFloat64(x).FloatString(decimals)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/health") || path == "/metrics" {
			return
		}
		logger.Info("Handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
