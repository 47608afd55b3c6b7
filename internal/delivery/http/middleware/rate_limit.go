package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"portfolio-contact/internal/delivery/http/response"
	"portfolio-contact/pkg/metrics"
)

// RateLimitConfig holds configuration for the coarse per-client API limiter.
// It sits in front of every route; the contact cooldown is enforced separately.
type RateLimitConfig struct {
	// Requests per minute per key
	PerMinute int
	// Idle limiters older than this are evicted
	IdleTTL time.Duration
	// Custom key extractor (default: IP-based)
	KeyFunc func(*gin.Context) string
}

// DefaultRateLimitConfig returns the default API rate limiting config
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		PerMinute: 100,
		IdleTTL:   10 * time.Minute,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// keyedLimiter holds one token bucket per key
type keyedLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	lastAccess map[string]time.Time
	lastSweep  time.Time
	limit      rate.Limit
	burst      int
	idleTTL    time.Duration
}

func newKeyedLimiter(perMinute int, idleTTL time.Duration) *keyedLimiter {
	return &keyedLimiter{
		limiters:   make(map[string]*rate.Limiter),
		lastAccess: make(map[string]time.Time),
		lastSweep:  time.Now(),
		limit:      rate.Limit(float64(perMinute) / 60.0),
		burst:      max(1, perMinute),
		idleTTL:    idleTTL,
	}
}

func (k *keyedLimiter) Allow(key string, now time.Time) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if now.Sub(k.lastSweep) >= k.idleTTL {
		k.evictLocked(now)
		k.lastSweep = now
	}

	limiter, exists := k.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(k.limit, k.burst)
		k.limiters[key] = limiter
	}
	k.lastAccess[key] = now
	return limiter.AllowN(now, 1)
}

// evictLocked removes limiters not used within idleTTL. Caller holds mu.
func (k *keyedLimiter) evictLocked(now time.Time) {
	cutoff := now.Add(-k.idleTTL)
	for key, last := range k.lastAccess {
		if last.Before(cutoff) {
			delete(k.limiters, key)
			delete(k.lastAccess, key)
		}
	}
}

func (k *keyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

// RateLimitMiddleware creates a rate limiting middleware with the given config
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	defaults := DefaultRateLimitConfig()
	if config.PerMinute <= 0 {
		config.PerMinute = defaults.PerMinute
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = defaults.IdleTTL
	}
	if config.KeyFunc == nil {
		config.KeyFunc = defaults.KeyFunc
	}

	limiter := newKeyedLimiter(config.PerMinute, config.IdleTTL)
	// Seconds until one token refills
	retryAfter := max(1, 60/config.PerMinute)

	return func(c *gin.Context) {
		if !limiter.Allow(config.KeyFunc(c), time.Now()) {
			metrics.APIRateLimited.Inc()
			c.Header("X-RateLimit-Limit", strconv.Itoa(config.PerMinute))
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.PerMinute))
		c.Next()
	}
}
