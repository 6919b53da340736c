package detector

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	domainExtensionPattern = regexp.MustCompile(`(?i)\.(com|org|net|ru|de|uk|fr|it|es|pl|br|jp|cn|in|au|ca|io|co|me|tv|cc|biz|info|name|pro|mobi|tel|travel|museum|aero|coop|jobs|mil|edu|gov|int|arpa)$`)
	websitePattern         = regexp.MustCompile(`(?i)^[a-z0-9-]+\.[a-z]{2,4}$`)

	mixedCaseSuffixPattern = regexp.MustCompile(`[a-z]+[A-Z]{2,}$`)
	upperSuffixPattern     = regexp.MustCompile(`[a-z]+[A-Z]+$`)
	generatedNamePattern   = regexp.MustCompile(`(?i)^[a-z]+[a-z]{4,}$`)
	randomCasePattern      = regexp.MustCompile(`[A-Z]{2,}[a-z]*[A-Z]+`)

	nameDigitPattern   = regexp.MustCompile(`\d`)
	nameSpecialPattern = regexp.MustCompile(`[^a-zA-Z\s.-]`)

	botNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^[a-z]+\d+$`),
		regexp.MustCompile(`(?i)^test`),
		regexp.MustCompile(`(?i)^user`),
		regexp.MustCompile(`(?i)^bot`),
		regexp.MustCompile(`(?i)^fake`),
		regexp.MustCompile(`(?i)^admin`),
		regexp.MustCompile(`(?i)^guest`),
	}
)

func detectNames(in *input) Finding {
	if in.firstName == "" && in.lastName == "" {
		return Finding{}
	}
	return analyzeNames(in.firstName, in.lastName, in.local)
}

// analyzeNames scores the first/last name fields. None of the checks consult
// the local part.
func analyzeNames(first, last, _ string) Finding {
	var out Finding
	add := func(f Finding) {
		if f.Score > 0 {
			out.Score += f.Score
			out.Reasons = append(out.Reasons, f.Reasons...)
		}
	}
	either := func(p *regexp.Regexp) bool {
		return p.MatchString(first) || p.MatchString(last)
	}

	firstLen := utf8.RuneCountInString(first)
	lastLen := utf8.RuneCountInString(last)

	if either(domainExtensionPattern) {
		add(hit(40, "Names contain domain extensions"))
	}
	if either(websitePattern) {
		add(hit(35, "Names look like websites"))
	}
	if strings.Contains(first, "www.") || strings.Contains(last, "www.") ||
		strings.Contains(first, "http") || strings.Contains(last, "http") {
		add(hit(45, "Names contain URL patterns"))
	}

	add(mixedCaseSuffix(first, last))
	add(nameConstruction(first, last))

	if either(randomCasePattern) {
		add(hit(40, "Names contain random character patterns"))
	}
	if first != "" && last != "" && repeatsFirstName(first, last) {
		add(hit(30, "First name repeated in last name"))
	}
	if (first != "" && firstLen < 2) || (last != "" && lastLen < 2) {
		add(hit(20, "Suspiciously short names"))
	}
	if firstLen > 15 || lastLen > 20 {
		add(hit(15, "Unusually long names"))
	}
	if either(nameDigitPattern) {
		add(hit(35, "Names contain numbers"))
	}
	if either(nameSpecialPattern) {
		add(hit(25, "Names contain special characters"))
	}
	if matchesAny(first, botNamePatterns) || matchesAny(last, botNamePatterns) {
		add(hit(30, "Names match bot patterns"))
	}
	if containsAny(strings.ToLower(first), nameKeyboardSequences) ||
		containsAny(strings.ToLower(last), nameKeyboardSequences) {
		add(hit(35, "Names contain keyboard sequences"))
	}

	return out
}

func mixedCaseSuffix(first, last string) Finding {
	switch {
	case mixedCaseSuffixPattern.MatchString(first) || mixedCaseSuffixPattern.MatchString(last):
		return hit(30, "Mixed case suffix in names")
	case upperSuffixPattern.MatchString(first) || upperSuffixPattern.MatchString(last):
		return hit(20, "Uppercase suffix in names")
	}
	return Finding{}
}

// hasCommonBase reports a common first name followed by more than two extra characters
func hasCommonBase(name string) bool {
	lower := strings.ToLower(name)
	n := utf8.RuneCountInString(lower)
	for _, base := range commonFirstNames {
		if strings.HasPrefix(lower, base) && n > len(base)+2 {
			return true
		}
	}
	return false
}

func nameConstruction(first, last string) Finding {
	if hasCommonBase(first) || hasCommonBase(last) {
		return hit(25, "Unnatural name construction pattern")
	}

	generated := (generatedNamePattern.MatchString(first) && utf8.RuneCountInString(first) > 10) ||
		(generatedNamePattern.MatchString(last) && utf8.RuneCountInString(last) > 12)
	if generated {
		return hit(15, "Generated name pattern")
	}
	return Finding{}
}

// repeatsFirstName compares first with the same-length prefix of last, case-insensitively
func repeatsFirstName(first, last string) bool {
	f := []rune(strings.ToLower(first))
	l := []rune(strings.ToLower(last))
	n := utf8.RuneCountInString(first)
	if n > len(l) {
		n = len(l)
	}
	return string(f) == string(l[:n])
}
