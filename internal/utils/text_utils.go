package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TextProcessor provides utilities for normalising contact text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextProcessor{
		logger: logger,
	}
}

// NormalizeEmail trims and lowercases an address. Angle brackets left over
// from an envelope path are removed.
func (tp *TextProcessor) NormalizeEmail(email string) string {
	email = strings.TrimSpace(tp.SanitizeUTF8(email))
	email = strings.TrimSuffix(strings.TrimPrefix(email, "<"), ">")
	// cases.Caser keeps state and is not safe for concurrent use
	return cases.Lower(language.Und).String(email)
}

// CleanName trims a contact name and drops invalid UTF-8. Case is kept since
// capitalisation is itself a signal.
func (tp *TextProcessor) CleanName(name string) string {
	return strings.TrimSpace(tp.SanitizeUTF8(name))
}

// SplitDisplayName turns a display name such as "Jane Q. Doe" or "Doe, Jane"
// into a first and last name.
func (tp *TextProcessor) SplitDisplayName(display string) (string, string) {
	display = strings.Trim(tp.CleanName(display), `"'`)
	if display == "" {
		return "", ""
	}

	if last, first, ok := strings.Cut(display, ","); ok {
		return strings.TrimSpace(first), strings.TrimSpace(last)
	}

	fields := strings.Fields(display)
	if len(fields) == 1 {
		return fields[0], ""
	}
	return fields[0], fields[len(fields)-1]
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated
}

// SanitizeUTF8 drops invalid UTF-8 bytes from text
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")
	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}
