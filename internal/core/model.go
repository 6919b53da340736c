package core

import (
	"time"

	"github.com/funneltechie/inboxreadybotclassifier/internal/detector"
)

// Contact is a CRM contact submitted for classification
type Contact struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// ClassificationResult represents the outcome of classifying a contact
type ClassificationResult struct {
	Email        string
	Score        int
	Category     detector.Category
	Reasons      []string
	Diagnostics  detector.Diagnostics
	AnalyzedAt   time.Time
	ModelUsed    string
	ProcessingID string
}

// IsBot reports whether the result falls in the highest category
func (r *ClassificationResult) IsBot() bool {
	return r.Category == detector.CategoryBot
}

// CacheEntry is a stored classification keyed by address and names
type CacheEntry struct {
	Key       string
	Email     string
	Score     int
	Category  detector.Category
	Reasons   []string
	LastSeen  time.Time
	ExpiresAt time.Time
}

// UpdateOutcome is what the CRM answered to a contact update
type UpdateOutcome struct {
	FieldID    string
	OK         bool
	StatusCode int
	Body       map[string]interface{}
}
