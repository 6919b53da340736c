package filter

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIPLimiterPerClient(t *testing.T) {
	l := newIPLimiter(60, 2)

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))

	// Other clients have their own bucket
	assert.True(t, l.allow("10.0.0.2"))
}

func TestIPLimiterClampsSettings(t *testing.T) {
	l := newIPLimiter(0, 0)
	assert.Equal(t, 1, l.perMin)
	assert.Equal(t, 1, l.burst)
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
}

func TestIPLimiterResetsWhenFull(t *testing.T) {
	l := newIPLimiter(60, 1)
	for i := 0; i < maxTrackedClients; i++ {
		l.get("10.1." + strconv.Itoa(i))
	}
	assert.Len(t, l.limiters, maxTrackedClients)

	l.get("fresh")
	assert.Len(t, l.limiters, 1)
	assert.Contains(t, l.limiters, "fresh")
}

func TestIPLimiterMiddleware(t *testing.T) {
	l := newIPLimiter(120, 1)

	r := gin.New()
	r.Use(l.middleware(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "120", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"message":"Too many requests"}`, w.Body.String())
}
