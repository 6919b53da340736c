package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeDots(t *testing.T) {
	tests := []struct {
		local   string
		score   int
		reasons []string
	}{
		{"john", 0, nil},
		{"jane.doe", 0, nil},
		{"a.b", 20, []string{"Single character segments"}},
		{"x.y.z", 30, []string{"Multiple single character segments"}},
		{"a.1", 60, []string{"Single character segments", "Numbers after dots", "Unnatural email segmentation"}},
		{"ab.cd.ef", 15, []string{"Possible word fragmentation"}},
		{"ab.cd.12", 35, []string{"Numbers after dots", "Possible word fragmentation"}},
		{"abcd.efgh.ijkl", 15, []string{"Possible word fragmentation"}},
		{"..", 25, []string{"Invalid dot placement"}},
		{"a..b", 45, []string{"Single character segments", "Invalid dot placement"}},
		{".john", 25, []string{"Invalid dot placement"}},
		{"john.", 25, []string{"Invalid dot placement"}},
		{"jo.hn.do.e1", 55, []string{"Many dots in email", "Artificially fragmented structure", "Possible word fragmentation"}},
		{"ab.c.de.f", 75, []string{"Many dots in email", "Single character segments", "Artificially fragmented structure", "Possible word fragmentation"}},
		{"a.b.c.d.e.f", 120, []string{
			"Excessive dots in email",
			"Multiple single character segments",
			"Artificially fragmented structure",
			"Unnatural email segmentation",
			"Possible word fragmentation",
		}},
		{"j.o.h.n.1", 125, []string{
			"Excessive dots in email",
			"Multiple single character segments",
			"Numbers after dots",
			"Artificially fragmented structure",
			"Unnatural email segmentation",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.local, func(t *testing.T) {
			f := analyzeDots(tt.local)
			assert.Equal(t, tt.score, f.Score)
			assert.Equal(t, tt.reasons, f.Reasons)
		})
	}
}

func TestAnalyzeDotsWithoutDotsIsEmpty(t *testing.T) {
	for _, local := range []string{"", "a", "john_doe", "x9y8z7"} {
		f := analyzeDots(local)
		assert.Zero(t, f.Score)
		assert.Empty(t, f.Reasons)
	}
}
