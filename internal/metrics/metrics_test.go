package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveClassification(t *testing.T) {
	m := New(false)
	m.ObserveClassification("Very Likely Bot", "heuristic", 95)
	m.ObserveClassification("Very Likely Bot", "heuristic", 120)
	m.ObserveClassification("Likely Human", "whitelist", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.classifications.WithLabelValues("Very Likely Bot", "heuristic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classifications.WithLabelValues("Likely Human", "whitelist")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.scores))
}

func TestObserveCRMRequest(t *testing.T) {
	m := New(false)
	m.ObserveCRMRequest("update_contact", "success")
	m.ObserveCRMRequest("resolve_field", "not_found")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.crmRequests.WithLabelValues("update_contact", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.crmRequests.WithLabelValues("resolve_field", "not_found")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New(true)
	m.ObserveClassification("Suspicious", "cache", 35)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bot_classifier_classifications_total{category="Suspicious",source="cache"} 1`)
	assert.Contains(t, string(body), "bot_classifier_score_bucket")
	assert.Contains(t, string(body), "go_goroutines")
}
