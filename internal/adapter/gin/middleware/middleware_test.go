package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"user-record-service/pkg/logger"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, logger.GetRequestID(c.Request.Context()))
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r
}

func get(r http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	t.Run("generates id", func(t *testing.T) {
		w := get(r, "/ping")
		id := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("reuses incoming id", func(t *testing.T) {
		w := get(r, "/ping", RequestIDHeader, "abc-123")
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", w.Body.String())
	})
}

func TestLogger_WritesAccessLog(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := newEngine(RequestID(), Logger(zap.New(core)))

	get(r, "/ping", RequestIDHeader, "req-9")
	get(r, "/missing")

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
	assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery(zaptest.NewLogger(t)))

	w := get(r, "/panic")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"internal server error"}`, w.Body.String())
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 3,
		WindowSeconds:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	r := newEngine(rl.Middleware())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/ping").Code, "request %d", i)
	}

	w := get(r, "/ping")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 1,
		WindowSeconds:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	r := newEngine(rl.Middleware())

	assert.Equal(t, http.StatusOK, get(r, "/ping").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/ping").Code)

	mr.FastForward(2 * time.Second)

	assert.Equal(t, http.StatusOK, get(r, "/ping").Code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 1,
		WindowSeconds:     1,
		Enabled:           false,
	}, zaptest.NewLogger(t))
	r := newEngine(rl.Middleware())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/ping").Code)
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 1,
		WindowSeconds:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	r := newEngine(rl.Middleware())

	mr.Close()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/ping").Code)
	}
}
