// SPDX-License-Identifier: MIT
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// idleBucketAge is how long an unused bucket is kept
const idleBucketAge = 10 * time.Minute

// TokenBucket holds the remaining requests of one client
type TokenBucket struct {
	mu       sync.Mutex
	tokens   int
	capacity int
	refillAt time.Time
	interval time.Duration
	lastSeen time.Time
}

// take consumes a token if one is left
func (b *TokenBucket) take(now time.Time) (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastSeen = now
	if now.After(b.refillAt) {
		b.tokens = b.capacity
		b.refillAt = now.Add(b.interval)
	}
	if b.tokens == 0 {
		return false, 0
	}
	b.tokens--
	return true, b.tokens
}

// RateLimiter manages token buckets per client IP
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*TokenBucket
	capacity int
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a rate limiter allowing capacity requests per
// interval and starts sweeping idle buckets
func NewRateLimiter(capacity int, interval time.Duration) *RateLimiter {
	if capacity <= 0 {
		capacity = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}
	limiter := &RateLimiter{
		buckets:  make(map[string]*TokenBucket),
		capacity: capacity,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go limiter.cleanup()
	return limiter
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(idleBucketAge / 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

// prune drops buckets idle for longer than idleBucketAge
func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, bucket := range rl.buckets {
		bucket.mu.Lock()
		idle := now.Sub(bucket.lastSeen) > idleBucketAge
		bucket.mu.Unlock()
		if idle {
			delete(rl.buckets, ip)
		}
	}
}

// Allow reports whether a request from ip may proceed and how many
// requests remain in the current interval
func (rl *RateLimiter) Allow(ip string) (bool, int) {
	now := rl.now()

	rl.mu.Lock()
	bucket, exists := rl.buckets[ip]
	if !exists {
		bucket = &TokenBucket{
			tokens:   rl.capacity,
			capacity: rl.capacity,
			refillAt: now.Add(rl.interval),
			interval: rl.interval,
		}
		rl.buckets[ip] = bucket
	}
	rl.mu.Unlock()

	return bucket.take(now)
}

// RateLimitMiddleware limits requests using the given methods, or every
// request when no methods are given
func RateLimitMiddleware(limiter *RateLimiter, methods ...string) gin.HandlerFunc {
	limited := make(map[string]bool, len(methods))
	for _, m := range methods {
		limited[strings.ToUpper(m)] = true
	}

	return func(c *gin.Context) {
		if len(limited) > 0 && !limited[c.Request.Method] {
			c.Next()
			return
		}

		allowed, remaining := limiter.Allow(clientIP(c))
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.capacity))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(limiter.interval.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}

// clientIP returns the first X-Forwarded-For address or the peer address
func clientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}
