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

	"github.com/orris-inc/leasebot/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGuard_IsAdmin(t *testing.T) {
	r := gin.New()
	r.GET("/", Guard(ok, IsAdmin("s3cret")))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer s3cret", http.StatusOK},
		{"case-insensitive scheme", "bearer s3cret", http.StatusOK},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"basic scheme", "Basic s3cret", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.header)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"type":"unauthorized"`)
			}
		})
	}
}

func TestIsAdmin_EmptyTokenRejectsAll(t *testing.T) {
	r := gin.New()
	r.GET("/", Guard(ok, IsAdmin("")))

	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer anything").Code)
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRateLimiter(client, 2, time.Minute, "test", logger.NewNopLogger())
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	r := gin.New()
	r.Use(rl.Limit())
	r.GET("/", ok)

	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	w := serve(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	fixed = fixed.Add(time.Minute)
	assert.Equal(t, http.StatusOK, serve(r, "").Code)
}

func TestRateLimiter_RetryAfterCountsToWindowEnd(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRateLimiter(client, 1, time.Minute, "test", logger.NewNopLogger())
	fixed := time.Date(2026, 1, 1, 12, 0, 45, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	r := gin.New()
	r.Use(rl.Limit())
	r.GET("/", ok)

	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	w := serve(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "15", w.Header().Get("Retry-After"))

	fixed = fixed.Add(15 * time.Second)
	assert.Equal(t, http.StatusOK, serve(r, "").Code)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	r := gin.New()
	r.Use(NewRateLimiter(client, 1, time.Minute, "", logger.NewNopLogger()).Limit())
	r.GET("/", ok)

	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "").Code)
}

func TestLogger_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(Logger(logger.NewNopLogger()))
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = c.GetString("request_id")
		ok(c)
	})

	w := serve(r, "")
	generated := w.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-42", seen)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.NewNopLogger()))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, "Bearer s3cret")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error occurred")
	assert.NotContains(t, w.Body.String(), "boom")
}
