package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCliFilter(t *testing.T, verbose, jsonOutput bool) (*CliFilter, *bytes.Buffer) {
	t.Helper()
	logger := zap.NewNop()
	service := core.NewClassificationService(nil, nil, nil, nil, nil, logger, false, 0, "")
	out := &bytes.Buffer{}
	f, err := NewCliFilter(service, logger, out, verbose, jsonOutput)
	require.NoError(t, err)
	return f, out
}

func TestNewCliFilterRequiresWriter(t *testing.T) {
	_, err := NewCliFilter(nil, zap.NewNop(), nil, false, false)
	assert.Error(t, err)
}

func TestCliProcessContactText(t *testing.T) {
	f, out := newTestCliFilter(t, true, false)

	result, err := f.ProcessContact(context.Background(), &core.Contact{Email: "noreply@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 55, result.Score)

	s := out.String()
	assert.Contains(t, s, "=== noreply@example.com ===")
	assert.Contains(t, s, "Bot score: 55\n")
	assert.Contains(t, s, "Category: Likely Automated\n")
	assert.Contains(t, s, "  - Role-based email\n")
	assert.Contains(t, s, "Entropy: 2.81\n")
	assert.Contains(t, s, "Digit ratio: 0.0%\n")
	assert.Contains(t, s, "Local part length: 7\n")
}

func TestCliProcessContactJSON(t *testing.T) {
	f, out := newTestCliFilter(t, false, true)

	_, err := f.ProcessContact(context.Background(), &core.Contact{Email: "jane.doe@company.com"})
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "jane.doe@company.com", rec["email"])
	assert.Equal(t, float64(15), rec["bot_score"])
	assert.Equal(t, "Likely Human", rec["category"])
	assert.Equal(t, core.SourceHeuristic, rec["source"])
	assert.NotContains(t, rec, "diagnostics")
}

func TestCliProcessContactSkips(t *testing.T) {
	f, out := newTestCliFilter(t, false, false)

	_, err := f.ProcessContact(context.Background(), &core.Contact{Email: "  "})
	assert.ErrorIs(t, err, core.ErrNoEmail)
	assert.Contains(t, out.String(), "Skipped:")
}

func TestCliProcessLines(t *testing.T) {
	f, out := newTestCliFilter(t, false, true)

	input := strings.Join([]string{
		"# signups",
		"noreply@example.com",
		"",
		"jane.doe@company.com,Jane,Doe",
		"@example.com",
	}, "\n")

	n, err := f.ProcessLines(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], `"skipped"`)
}

func TestCliProcessLinesCancelled(t *testing.T) {
	f, _ := newTestCliFilter(t, false, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := f.ProcessLines(ctx, strings.NewReader("noreply@example.com\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}
