package core

import (
	"context"
)

// CRMClient defines the interface for writing results back to the CRM
type CRMClient interface {
	// ResolveFieldID finds the id of a contact custom field by key or name
	ResolveFieldID(ctx context.Context, apiKey, name string) (string, error)

	// UpdateContactField sets one custom field on a contact
	UpdateContactField(ctx context.Context, apiKey, contactID, fieldID, value string) (*UpdateOutcome, error)
}

// CacheRepository defines the interface for caching classification results
type CacheRepository interface {
	// Get retrieves a cached entry by key
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// TrustList decides whether an address belongs to a trusted domain
type TrustList interface {
	IsWhitelisted(email string) bool
}

// Recorder receives classification and CRM events for metrics
type Recorder interface {
	ObserveClassification(category, source string, score int)
	ObserveCRMRequest(operation, outcome string)
}
