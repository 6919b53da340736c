package detector

import (
	"strings"
	"unicode/utf8"
)

func detectDots(in *input) Finding {
	return analyzeDots(in.local)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return true
}

func digitAfterDot(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '.' && isDigit(rune(s[i+1])) {
			return true
		}
	}
	return false
}

// analyzeDots scores how a local part is segmented by dots. Empty segments are
// signals, not errors.
func analyzeDots(local string) Finding {
	var out Finding
	if !strings.Contains(local, ".") {
		return out
	}
	add := func(score int, reason string) {
		out.Score += score
		out.Reasons = append(out.Reasons, reason)
	}

	segments := strings.Split(local, ".")
	dotCount := len(segments) - 1

	singles, totalLen, longest := 0, 0, 0
	hasEmpty, hasNumeric := false, false
	for _, seg := range segments {
		n := utf8.RuneCountInString(seg)
		totalLen += n
		if n > longest {
			longest = n
		}
		switch {
		case n == 0:
			hasEmpty = true
		case n == 1:
			singles++
		}
		if allDigits(seg) {
			hasNumeric = true
		}
	}

	switch {
	case dotCount >= 4:
		add(30, "Excessive dots in email")
	case dotCount >= 3:
		add(15, "Many dots in email")
	}

	switch {
	case singles >= 3:
		add(30, "Multiple single character segments")
	case singles >= 2:
		add(20, "Single character segments")
	}

	if digitAfterDot(local) {
		add(20, "Numbers after dots")
	}

	avgLen := float64(totalLen) / float64(len(segments))
	if len(segments) >= 4 && avgLen < 2.5 {
		add(25, "Artificially fragmented structure")
	}

	if singles > 0 && (hasNumeric || len(segments) > 4) {
		add(20, "Unnatural email segmentation")
	}

	if strings.Contains(local, "..") || hasEmpty {
		add(25, "Invalid dot placement")
	}

	joined := []rune(strings.ReplaceAll(local, ".", ""))
	if len(segments) >= 3 && len(joined) >= 6 && longest <= 4 &&
		!strings.ContainsFunc(string(joined[:len(joined)-3]), isDigit) {
		add(15, "Possible word fragmentation")
	}

	return out
}
