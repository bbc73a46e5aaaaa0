package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/commdesk/cts/internal/api/apierrors"
)

// clientLimiterTTL is how long an idle client keeps its bucket before eviction
const clientLimiterTTL = 30 * time.Minute

// RateLimitConfig holds per-client rate limit settings
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter tracks one token bucket per client IP
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     rate.Limit
	burst   int
}

// NewRateLimiter creates a per-client rate limiter
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
	}
}

// Allow reports whether the client may proceed and evicts stale buckets
func (rl *RateLimiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, client := range rl.clients {
		if now.Sub(client.lastSeen) > clientLimiterTTL {
			delete(rl.clients, ip)
		}
	}

	client, ok := rl.clients[clientIP]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[clientIP] = client
	}
	client.lastSeen = now

	return client.limiter.Allow()
}

// RateLimit returns a gin middleware enforcing a per-client-IP token bucket
// on submission routes. Disabled config yields a pass-through handler.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	rl := NewRateLimiter(cfg)
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			apiErr := apierrors.APIError{
				Code:    apierrors.ErrCodeTooManyRequests,
				Message: "Too many requests, please try again later",
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apiErr)
			return
		}
		c.Next()
	}
}
