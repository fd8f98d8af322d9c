package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mroshb/film_catalog/internal/handlers/response"
	"github.com/mroshb/film_catalog/pkg/errors"
	"golang.org/x/time/rate"
)

// RateLimiter implements a token bucket per client IP
type RateLimiter struct {
	ipLimits map[string]*ipLimit
	mu       sync.Mutex

	perSecond rate.Limit
	burst     int
	idleTTL   time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
}

type ipLimit struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter. Idle IPs are forgotten after
// idleTTL.
func NewRateLimiter(perSecond, burst int, idleTTL time.Duration) *RateLimiter {
	rl := &RateLimiter{
		ipLimits:  make(map[string]*ipLimit),
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		idleTTL:   idleTTL,
		stop:      make(chan struct{}),
	}

	// Start cleanup goroutine
	go rl.cleanup()

	return rl
}

// Allow reports whether ip may make another request now
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	limit, exists := rl.ipLimits[ip]
	if !exists {
		limit = &ipLimit{limiter: rate.NewLimiter(rl.perSecond, rl.burst)}
		rl.ipLimits[ip] = limit
	}
	limit.lastSeen = time.Now()
	rl.mu.Unlock()

	return limit.limiter.Allow()
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			response.Error(c, errors.New(errors.ErrCodeRateLimitExceeded, "too many requests, slow down"))
			return
		}
		c.Next()
	}
}

// cleanup removes idle entries
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.evictIdle(now)
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, limit := range rl.ipLimits {
		if now.Sub(limit.lastSeen) > rl.idleTTL {
			delete(rl.ipLimits, ip)
		}
	}
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Reset clears all rate limits (useful for testing)
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.ipLimits = make(map[string]*ipLimit)
}
