package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/funneltechie/inboxreadybotclassifier/internal/detector"
	"github.com/funneltechie/inboxreadybotclassifier/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNoEmail is returned when a contact carries no address at all
	ErrNoEmail = errors.New("no email provided")
	// ErrUnclassifiable is returned for addresses without '@' or local part
	ErrUnclassifiable = errors.New("email address has no local part")
	// ErrFieldNotFound is returned when the CRM has no matching custom field
	ErrFieldNotFound = errors.New("custom field not found")
	// ErrUpdateFailed wraps transport failures of the contact update
	ErrUpdateFailed = errors.New("contact update failed")
	// ErrCRMDisabled is returned by Publish when no CRM client is configured
	ErrCRMDisabled = errors.New("CRM write-back disabled")
)

const (
	SourceHeuristic = "heuristic"
	SourceCache     = "cache"
	SourceWhitelist = "whitelist"

	// DefaultCategoryField is the CRM custom field receiving the category
	DefaultCategoryField = "contact.email_category"

	trustedDomainReason = "Trusted domain"
)

// ClassificationService is the core service for bot classification
type ClassificationService struct {
	cache         CacheRepository
	crm           CRMClient
	trust         TrustList
	recorder      Recorder
	text          *utils.TextProcessor
	logger        *zap.Logger
	cacheEnabled  bool
	cacheTTL      time.Duration
	categoryField string
}

// NewClassificationService creates a new classification service. cache, crm,
// trust and recorder may be nil.
func NewClassificationService(
	cache CacheRepository,
	crm CRMClient,
	trust TrustList,
	recorder Recorder,
	text *utils.TextProcessor,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	categoryField string,
) *ClassificationService {
	if categoryField == "" {
		categoryField = DefaultCategoryField
	}
	if text == nil {
		text = utils.NewTextProcessor(logger)
	}
	return &ClassificationService{
		cache:         cache,
		crm:           crm,
		trust:         trust,
		recorder:      recorder,
		text:          text,
		logger:        logger,
		cacheEnabled:  cacheEnabled && cache != nil,
		cacheTTL:      cacheTTL,
		categoryField: categoryField,
	}
}

// CategoryField returns the CRM field the category is written to
func (s *ClassificationService) CategoryField() string {
	return s.categoryField
}

// cacheKey length-prefixes every part so no two contacts share a key
func cacheKey(email, firstName, lastName string) string {
	var b strings.Builder
	for _, part := range []string{email, firstName, lastName} {
		b.WriteString(strconv.Itoa(len(part)))
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}

// Classify scores a contact's address and names
func (s *ClassificationService) Classify(ctx context.Context, contact *Contact) (*ClassificationResult, error) {
	email := s.text.NormalizeEmail(contact.Email)
	firstName := s.text.CleanName(contact.FirstName)
	lastName := s.text.CleanName(contact.LastName)

	if email == "" {
		return nil, ErrNoEmail
	}
	local, _ := detector.SplitAddress(email)
	if local == "" || !strings.Contains(email, "@") {
		return nil, ErrUnclassifiable
	}

	if s.trust != nil && s.trust.IsWhitelisted(email) {
		s.logger.Info("Skipping classification for trusted domain",
			zap.String("email", email),
			zap.String("action", "whitelist_bypass"))

		result := &ClassificationResult{
			Email:        email,
			Score:        0,
			Category:     detector.CategoryHuman,
			Reasons:      []string{trustedDomainReason},
			Diagnostics:  detector.Inspect(email),
			AnalyzedAt:   time.Now(),
			ModelUsed:    SourceWhitelist,
			ProcessingID: uuid.NewString(),
		}
		s.observe(result)
		return result, nil
	}

	key := cacheKey(email, firstName, lastName)
	if s.cacheEnabled {
		if entry, err := s.cache.Get(ctx, key); err == nil {
			s.logger.Debug("Cache hit for address", zap.String("email", email))
			result := &ClassificationResult{
				Email:        email,
				Score:        entry.Score,
				Category:     entry.Category,
				Reasons:      entry.Reasons,
				Diagnostics:  detector.Inspect(email),
				AnalyzedAt:   time.Now(),
				ModelUsed:    SourceCache,
				ProcessingID: uuid.NewString(),
			}
			s.observe(result)
			return result, nil
		}
	}

	scored := detector.Classify(email, firstName, lastName)
	result := &ClassificationResult{
		Email:        email,
		Score:        scored.Score,
		Category:     scored.Category,
		Reasons:      scored.Reasons,
		Diagnostics:  detector.Inspect(email),
		AnalyzedAt:   time.Now(),
		ModelUsed:    SourceHeuristic,
		ProcessingID: uuid.NewString(),
	}

	s.logger.Debug("Classified address",
		zap.String("email", email),
		zap.Int("bot_score", result.Score),
		zap.String("category", string(result.Category)),
		zap.Strings("reason_tags", result.Reasons),
		zap.String("processing_id", result.ProcessingID))

	if s.cacheEnabled {
		now := time.Now()
		entry := &CacheEntry{
			Key:       key,
			Email:     email,
			Score:     result.Score,
			Category:  result.Category,
			Reasons:   result.Reasons,
			LastSeen:  now,
			ExpiresAt: now.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	s.observe(result)
	return result, nil
}

func (s *ClassificationService) observe(result *ClassificationResult) {
	if s.recorder != nil {
		s.recorder.ObserveClassification(string(result.Category), result.ModelUsed, result.Score)
	}
}

// Publish writes the result's category to the contact's category field.
// The result itself is never altered.
func (s *ClassificationService) Publish(ctx context.Context, contactID, apiKey string, result *ClassificationResult) (*UpdateOutcome, error) {
	if s.crm == nil {
		return nil, ErrCRMDisabled
	}

	fieldID, err := s.crm.ResolveFieldID(ctx, apiKey, s.categoryField)
	if err != nil {
		s.recordCRM("resolve_field", err)
		return nil, fmt.Errorf("failed to resolve field %s: %w", s.categoryField, err)
	}
	s.recordCRM("resolve_field", nil)

	outcome, err := s.crm.UpdateContactField(ctx, apiKey, contactID, fieldID, string(result.Category))
	if err != nil {
		s.recordCRM("update_contact", err)
		s.logger.Error("Failed to update CRM contact",
			zap.String("contact_id", contactID),
			zap.String("field_id", fieldID),
			zap.Error(err))
		return &UpdateOutcome{FieldID: fieldID}, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	outcome.FieldID = fieldID

	if outcome.OK {
		s.recordCRM("update_contact", nil)
	} else {
		s.observeCRM("update_contact", "rejected")
	}

	s.logger.Info("Updated CRM contact",
		zap.String("contact_id", contactID),
		zap.String("field_id", fieldID),
		zap.String("category", string(result.Category)),
		zap.Int("status_code", outcome.StatusCode),
		zap.Bool("ok", outcome.OK))

	return outcome, nil
}

func (s *ClassificationService) recordCRM(operation string, err error) {
	switch {
	case err == nil:
		s.observeCRM(operation, "success")
	case errors.Is(err, ErrFieldNotFound):
		s.observeCRM(operation, "not_found")
	default:
		s.observeCRM(operation, "error")
	}
}

func (s *ClassificationService) observeCRM(operation, outcome string) {
	if s.recorder != nil {
		s.recorder.ObserveCRMRequest(operation, outcome)
	}
}
