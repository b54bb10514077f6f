// SPDX-License-Identifier: MIT
package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func limitedRouter(limiter *RateLimiter, methods ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(limiter, methods...))
	r.POST("/api/projects", func(c *gin.Context) { c.Status(201) })
	r.GET("/api/projects", func(c *gin.Context) { c.Status(200) })
	return r
}

func send(r *gin.Engine, method, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/api/projects", nil)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitAllowed(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)
	defer limiter.Stop()

	w := send(limitedRouter(limiter, "POST"), "POST", "10.0.0.1:1234")
	assert.Equal(t, 201, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitExceeded(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Stop()
	r := limitedRouter(limiter, "POST")

	assert.Equal(t, 201, send(r, "POST", "10.0.0.1:1234").Code)
	assert.Equal(t, 201, send(r, "POST", "10.0.0.1:1234").Code)

	w := send(r, "POST", "10.0.0.1:1234")
	assert.Equal(t, 429, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// other clients have their own bucket
	assert.Equal(t, 201, send(r, "POST", "10.0.0.2:1234").Code)
}

func TestRateLimitSkipsOtherMethods(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	defer limiter.Stop()
	r := limitedRouter(limiter, "POST")

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, send(r, "GET", "10.0.0.1:1234").Code)
	}
}

func TestRateLimitRefills(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	defer limiter.Stop()
	now := time.Now()
	limiter.now = func() time.Time { return now }

	allowed, _ := limiter.Allow("10.0.0.1")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("10.0.0.1")
	assert.False(t, allowed)

	now = now.Add(2 * time.Minute)
	allowed, remaining := limiter.Allow("10.0.0.1")
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)
}

func TestRateLimitPrunesIdleBuckets(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	defer limiter.Stop()
	now := time.Now()
	limiter.now = func() time.Time { return now }

	limiter.Allow("10.0.0.1")
	now = now.Add(idleBucketAge + time.Second)
	limiter.prune()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Empty(t, limiter.buckets)
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", nil)
	c.Request.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", clientIP(c))

	c.Request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(c))
}
