package detector

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// Entropy returns the Shannon entropy of s in bits per character.
func Entropy(s string) float64 {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return 0
	}

	freq := make(map[rune]int)
	var order []rune
	for _, r := range s {
		if freq[r] == 0 {
			order = append(order, r)
		}
		freq[r]++
	}

	// Floating point addition is not associative, so the terms are summed in a
	// fixed order: digits ascending, then other symbols by first occurrence.
	sort.SliceStable(order, func(i, j int) bool {
		di, dj := isDigit(order[i]), isDigit(order[j])
		if di && dj {
			return order[i] < order[j]
		}
		return di && !dj
	})

	var h float64
	for _, r := range order {
		p := float64(freq[r]) / float64(n)
		h += p * math.Log2(p)
	}
	if h == 0 {
		return 0
	}
	return -h
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// entropyThreshold is lowered for short strings, which cannot reach high entropy
func entropyThreshold(length int) float64 {
	switch {
	case length <= 6:
		return 2.2
	case length <= 8:
		return 2.5
	case length <= 10:
		return 2.8
	default:
		return 3.2
	}
}

func detectEntropy(in *input) Finding {
	h := Entropy(in.local)
	base := entropyThreshold(in.localLen)

	switch {
	case h > base+1.0:
		return hit(35, "Very high entropy for string length")
	case h > base+0.5:
		return hit(25, "High entropy for string length")
	case h > base:
		return hit(15, "Moderate entropy for string length")
	}
	return Finding{}
}

func digitRatio(s string, length int) float64 {
	if length == 0 {
		return 0
	}
	digits := 0
	for _, r := range s {
		if isDigit(r) {
			digits++
		}
	}
	return float64(digits) / float64(length)
}

// Diagnostics are the raw measurements behind a classification
type Diagnostics struct {
	Entropy         float64 `json:"entropy"`
	DigitRatio      float64 `json:"digit_ratio"`
	LocalPartLength int     `json:"local_part_length"`
	Domain          string  `json:"domain"`
	DotCount        int     `json:"dot_count"`
}

// Inspect measures an address without scoring it.
func Inspect(email string) Diagnostics {
	in := newInput(email, "", "")
	return Diagnostics{
		Entropy:         Entropy(in.local),
		DigitRatio:      digitRatio(in.local, in.localLen),
		LocalPartLength: in.localLen,
		Domain:          in.domain,
		DotCount:        strings.Count(in.local, "."),
	}
}
