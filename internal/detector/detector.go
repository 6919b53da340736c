// Package detector implements the rule-based bot likelihood scorer for email
// addresses. Every detector is independent: several may fire on the same input
// and their points simply add up.
package detector

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is the label derived from a total score
type Category string

const (
	CategoryHuman      Category = "Likely Human"
	CategorySuspicious Category = "Suspicious"
	CategoryAutomated  Category = "Likely Automated"
	CategoryBot        Category = "Very Likely Bot"
)

// Category thresholds, lower bounds inclusive
const (
	BotThreshold        = 70
	AutomatedThreshold  = 50
	SuspiciousThreshold = 30
)

// Finding is the contribution of a single detector
type Finding struct {
	Score   int
	Reasons []string
}

func hit(score int, reason string) Finding {
	return Finding{Score: score, Reasons: []string{reason}}
}

// Result is the outcome of classifying one address
type Result struct {
	Score    int      `json:"bot_score"`
	Category Category `json:"category"`
	Reasons  []string `json:"reason_tags"`
}

// input holds the normalised values every detector reads
type input struct {
	local     string
	domain    string
	localLen  int
	firstName string
	lastName  string
}

type detectorFunc func(in *input) Finding

// pipeline is evaluated in order; the order defines the order of reasons
var pipeline = []detectorFunc{
	detectRolePrefix,
	detectSpamTool,
	detectEntropy,
	detectDigitRatio,
	detectSequentialNumbers,
	detectRandomPattern,
	detectKeyboardSequence,
	detectConsonantClusters,
	detectRandomness,
	detectDisposableDomain,
	detectSuspiciousDomain,
	detectLength,
	detectNames,
	detectDots,
	detectBotPattern,
}

// Classify scores an email address and optional first/last name.
// The address is lowercased here as well, so callers may pass it verbatim.
func Classify(email, firstName, lastName string) Result {
	in := newInput(email, firstName, lastName)

	result := Result{Reasons: []string{}}
	for _, detect := range pipeline {
		f := detect(in)
		if f.Score <= 0 {
			continue
		}
		result.Score += f.Score
		result.Reasons = append(result.Reasons, f.Reasons...)
	}
	result.Category = CategoryFor(result.Score)

	return result
}

// CategoryFor maps a score to its category
func CategoryFor(score int) Category {
	switch {
	case score >= BotThreshold:
		return CategoryBot
	case score >= AutomatedThreshold:
		return CategoryAutomated
	case score >= SuspiciousThreshold:
		return CategorySuspicious
	default:
		return CategoryHuman
	}
}

// Normalize lowercases an address using full Unicode case mapping.
func Normalize(email string) string {
	return cases.Lower(language.Und).String(email)
}

// SplitAddress splits a normalised address at its first '@'.
// The domain is empty when there is no '@'.
func SplitAddress(email string) (local, domain string) {
	local, domain, _ = strings.Cut(email, "@")
	return local, domain
}

func newInput(email, firstName, lastName string) *input {
	local, domain := SplitAddress(Normalize(email))
	return &input{
		local:     local,
		domain:    domain,
		localLen:  utf8.RuneCountInString(local),
		firstName: strings.TrimSpace(firstName),
		lastName:  strings.TrimSpace(lastName),
	}
}
