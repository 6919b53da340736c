package detector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntropy(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"empty string", "", 0},
		{"single character", "a", 0},
		{"identical characters", "aaaa", 0},
		{"four distinct", "abcd", 2},
		{"eight distinct", "abcdefgh", 3},
		{"one repeat", "jane.doe", 2.75},
		{"ten distinct with digits", "a1b2c3d4e5", math.Log2(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Entropy(tt.input), 1e-12)
		})
	}
}

func TestEntropyOfIdenticalCharactersIsPositiveZero(t *testing.T) {
	assert.False(t, math.Signbit(Entropy("zzzz")))
}

func TestEntropyDistinctCharacters(t *testing.T) {
	alphabet := "abcdefghijklmnopqrstuvwxyz0123456789"
	for n := 1; n <= len(alphabet); n++ {
		assert.InDelta(t, math.Log2(float64(n)), Entropy(alphabet[:n]), 1e-9, "n=%d", n)
	}
}

func TestEntropyThreshold(t *testing.T) {
	assert.Equal(t, 2.2, entropyThreshold(6))
	assert.Equal(t, 2.5, entropyThreshold(7))
	assert.Equal(t, 2.5, entropyThreshold(8))
	assert.Equal(t, 2.8, entropyThreshold(10))
	assert.Equal(t, 3.2, entropyThreshold(11))
}

func TestDetectEntropyTiers(t *testing.T) {
	// length 10 → base 2.8; log2(10) ≈ 3.32 exceeds base+0.5
	f := detectEntropy(newInput("a1b2c3d4e5@x.com", "", ""))
	assert.Equal(t, 25, f.Score)
	assert.Equal(t, []string{"High entropy for string length"}, f.Reasons)

	// length 6 → base 2.2; log2(6) ≈ 2.58 is only moderate
	f = detectEntropy(newInput("qwerty@x.com", "", ""))
	assert.Equal(t, 15, f.Score)

	// 16 distinct characters → 4.0 exceeds 3.2+0.5
	f = detectEntropy(newInput("abcdefghijklmnop@x.com", "", ""))
	assert.Equal(t, 35, f.Score)
	assert.Equal(t, []string{"Very high entropy for string length"}, f.Reasons)

	f = detectEntropy(newInput("aaaaaaa@x.com", "", ""))
	assert.Zero(t, f.Score)
}

func TestInspect(t *testing.T) {
	d := Inspect("John.Smith.2024@Example.com")
	assert.Equal(t, 15, d.LocalPartLength)
	assert.Equal(t, "example.com", d.Domain)
	assert.Equal(t, 2, d.DotCount)
	assert.InDelta(t, 4.0/15.0, d.DigitRatio, 1e-12)
	assert.Greater(t, d.Entropy, 0.0)
}
