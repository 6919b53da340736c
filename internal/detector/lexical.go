package detector

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	digitRunPattern = regexp.MustCompile(`\d{2,}`)

	// The first shape needs uppercase letters and therefore never matches a
	// lowercased local part. It is kept so scores stay identical to the tuned rules.
	randomPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[a-z]{1,3}[A-Z]{1,3}[a-z]*`),
		regexp.MustCompile(`[a-zA-Z]+\d+[a-zA-Z]+\d+`),
	}

	consonantRunPattern = regexp.MustCompile(`(?i)[bcdfghjklmnpqrstvwxyz]{2,}`)

	recognizablePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[a-z]+\d+$`),
		regexp.MustCompile(`^[a-z]+\.[a-z]+$`),
		regexp.MustCompile(`^[a-z]+_[a-z]+$`),
		regexp.MustCompile(`^(test|user|admin|info|mail|email|contact)`),
	}
	commonEnglishPattern = regexp.MustCompile(`ing|tion|er|ed|ly|th|he|an|re|nd|on|en|at|ou|it|is|or|ti|as|to|io`)

	botPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[a-z]+\d+[a-z]*$`),
		regexp.MustCompile(`^[a-z]{1,3}\d{4,}$`),
		regexp.MustCompile(`^test\d*$`),
		regexp.MustCompile(`^user\d+$`),
		regexp.MustCompile(`^[a-z]+_[a-z]+\d+$`),
	}
)

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func detectRolePrefix(in *input) Finding {
	if hasAnyPrefix(in.local, rolePrefixes) {
		return hit(40, "Role-based email")
	}
	return Finding{}
}

func detectSpamTool(in *input) Finding {
	if containsAny(in.local, spamTools) {
		return hit(60, "Contains spam tool identifier")
	}
	return Finding{}
}

func detectDigitRatio(in *input) Finding {
	ratio := digitRatio(in.local, in.localLen)
	switch {
	case ratio > 0.4:
		return hit(25, "Very digit-heavy username")
	case ratio > 0.2:
		return hit(15, "Digit-heavy username")
	}
	return Finding{}
}

func detectSequentialNumbers(in *input) Finding {
	if digitRunPattern.MatchString(in.local) {
		return hit(20, "Contains sequential numbers")
	}
	return Finding{}
}

func detectRandomPattern(in *input) Finding {
	if matchesAny(in.local, randomPatterns) {
		return hit(25, "Random character pattern")
	}
	return Finding{}
}

func detectKeyboardSequence(in *input) Finding {
	if containsAny(in.local, keyboardSequences) {
		return hit(35, "Contains keyboard sequence")
	}
	return Finding{}
}

func detectConsonantClusters(in *input) Finding {
	clusters := consonantRunPattern.FindAllString(in.local, -1)

	total, longest := 0, 0
	for _, c := range clusters {
		n := utf8.RuneCountInString(c)
		total += n
		if n > longest {
			longest = n
		}
	}

	switch {
	case longest >= 4:
		return hit(20, "Contains long consonant clusters")
	case total >= 6:
		return hit(15, "Multiple consonant clusters")
	case len(clusters) >= 3:
		return hit(10, "Many consonant clusters")
	}
	return Finding{}
}

func isRecognizable(local string) bool {
	return matchesAny(local, recognizablePatterns) ||
		strings.Contains(local, "mail") ||
		strings.Contains(local, "email")
}

func detectRandomness(in *input) Finding {
	if in.localLen < 6 || isRecognizable(in.local) {
		return Finding{}
	}

	vowels, consonants := 0, 0
	for _, r := range in.local {
		switch {
		case strings.ContainsRune("aeiou", r):
			vowels++
		case strings.ContainsRune("bcdfghjklmnpqrstvwxyz", r):
			consonants++
		}
	}
	vowelRatio := float64(vowels) / float64(in.localLen)

	if vowelRatio < 0.2 && consonants >= 6 {
		return hit(25, "Random character email address")
	}
	if !commonEnglishPattern.MatchString(in.local) && in.localLen >= 8 {
		return hit(20, "No recognizable patterns in email")
	}
	return Finding{}
}

func detectLength(in *input) Finding {
	switch {
	case in.localLen > 25:
		return hit(20, "Extremely long local part")
	case in.localLen > 15:
		return hit(10, "Very long local part")
	case in.localLen < 3:
		return hit(15, "Suspiciously short local part")
	}
	return Finding{}
}

func detectBotPattern(in *input) Finding {
	if matchesAny(in.local, botPatterns) {
		return hit(25, "Matches common bot naming pattern")
	}
	return Finding{}
}
