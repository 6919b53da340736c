// Package crm writes classification results back to GoHighLevel contacts.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/hashicorp/go-retryablehttp"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DefaultBaseURL is the GoHighLevel v1 REST endpoint
const DefaultBaseURL = "https://rest.gohighlevel.com/v1"

// ErrFieldNotFound is returned when no custom field matches the requested name
var ErrFieldNotFound = core.ErrFieldNotFound

// Options configures the HTTP transport and the field id cache
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	FieldTTL     time.Duration
}

// GoHighLevelClient implements core.CRMClient against the GoHighLevel REST API
type GoHighLevelClient struct {
	baseURL string
	http    *retryablehttp.Client
	fields  *gocache.Cache
	logger  *zap.Logger
}

type customField struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FieldKey string `json:"fieldKey"`
}

type customFieldsResponse struct {
	CustomFields []customField `json:"customFields"`
}

// NewGoHighLevelClient creates a new CRM client
func NewGoHighLevelClient(opts Options, logger *zap.Logger) *GoHighLevelClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	client := retryablehttp.NewClient()
	client.Logger = newLeveledLogger(logger)
	client.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		client.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		client.RetryWaitMax = opts.RetryWaitMax
	}
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}
	// The last response is handed back after retries so callers see the
	// CRM's own status and body.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	ttl := opts.FieldTTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}

	return &GoHighLevelClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    client,
		fields:  gocache.New(ttl, 10*time.Minute),
		logger:  logger,
	}
}

func (c *GoHighLevelClient) newRequest(ctx context.Context, method, path, apiKey string, body interface{}) (*retryablehttp.Request, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func matchesField(f customField, name string) bool {
	return f.FieldKey == name ||
		f.Name == name ||
		f.FieldKey == strings.Replace(name, "contact.", "", 1)
}

// ResolveFieldID finds the id of a contact custom field. Lookups are cached
// per api key.
func (c *GoHighLevelClient) ResolveFieldID(ctx context.Context, apiKey, name string) (string, error) {
	cacheKey := apiKey + "\x00" + name
	if id, ok := c.fields.Get(cacheKey); ok {
		return id.(string), nil
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/custom-fields/", apiKey, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch custom fields: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch custom fields: %d", resp.StatusCode)
	}

	var data customFieldsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode custom fields: %w", err)
	}

	for _, f := range data.CustomFields {
		if !matchesField(f, name) {
			continue
		}
		// only the first match counts, even when it carries no id
		if f.ID == "" {
			break
		}
		c.fields.SetDefault(cacheKey, f.ID)
		c.logger.Debug("Resolved custom field",
			zap.String("field_name", name),
			zap.String("field_id", f.ID))
		return f.ID, nil
	}

	return "", fmt.Errorf("%w: %s", ErrFieldNotFound, name)
}

// UpdateContactField sets one custom field on a contact. A non-2xx answer is
// not an error; it is reported through UpdateOutcome.OK.
func (c *GoHighLevelClient) UpdateContactField(ctx context.Context, apiKey, contactID, fieldID, value string) (*core.UpdateOutcome, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"customField": map[string]string{fieldID: value},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode update: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/contacts/"+url.PathEscape(contactID), apiKey, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read update response: %w", err)
	}

	body := map[string]interface{}{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("failed to decode update response: %w", err)
		}
	}

	return &core.UpdateOutcome{
		FieldID:    fieldID,
		OK:         resp.StatusCode >= 200 && resp.StatusCode <= 299,
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// Forget drops cached field ids
func (c *GoHighLevelClient) Forget() {
	c.fields.Flush()
}
