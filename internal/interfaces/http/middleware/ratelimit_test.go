package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time { return c.t }

func TestRateLimiter_Allow(t *testing.T) {
	clock := &stepClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	rl := newRateLimiter(1, 2, clock.now)

	ok, remaining := rl.Allow("shop:a")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, _ = rl.Allow("shop:a")
	assert.True(t, ok)
	ok, remaining = rl.Allow("shop:a")
	assert.False(t, ok)
	assert.Zero(t, remaining)

	ok, _ = rl.Allow("shop:b")
	assert.True(t, ok, "buckets are independent")

	clock.t = clock.t.Add(time.Second)
	ok, _ = rl.Allow("shop:a")
	assert.True(t, ok, "one token refills per second")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	clock := &stepClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	rl := newRateLimiter(1, 1, clock.now)

	rl.Allow("shop:a")
	clock.t = clock.t.Add(5 * time.Minute)
	rl.Allow("shop:b")
	clock.t = clock.t.Add(6 * time.Minute)

	rl.cleanup()
	assert.Equal(t, 1, rl.size())
}

func TestRateLimit_Middleware(t *testing.T) {
	limiter := NewRateLimiter(0.001, 1)
	defer limiter.Stop()

	router := gin.New()
	router.Use(RequestID(), Auth(AuthConfig{AllowHeaderFallback: true}), RateLimit(limiter))
	router.GET("/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	tenantID := uuid.NewString()
	send := func(tenant string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.Header.Set(TenantHeaderKey, tenant)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := send(tenantID)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = send(tenantID)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "ERR_RATE_LIMITED", decodeError(t, w).Code)

	assert.Equal(t, http.StatusOK, send(uuid.NewString()).Code)
}
