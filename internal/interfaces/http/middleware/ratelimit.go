package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig tunes the per-client rate limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	// SkipPaths bypass limiting entirely.
	SkipPaths []string
	// IdleEviction drops a client's bucket after this long without a
	// request, bounding memory under IP churn.
	IdleEviction time.Duration
}

// DefaultRateLimitConfig returns the standard limiter configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 20,
		Burst:             40,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		IdleEviction:      5 * time.Minute,
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

// NewRateLimiter constructs a RateLimiter.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRateLimitConfig().RequestsPerSecond
	}
	if cfg.Burst < 1 {
		cfg.Burst = DefaultRateLimitConfig().Burst
	}
	if cfg.IdleEviction <= 0 {
		cfg.IdleEviction = DefaultRateLimitConfig().IdleEviction
	}
	return &RateLimiter{cfg: cfg, clients: make(map[string]*clientLimiter)}
}

func (rl *RateLimiter) allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)}
		rl.clients[key] = cl
	}
	cl.lastSeen = now

	// Opportunistic eviction keeps the map bounded without a janitor
	// goroutine to manage.
	if len(rl.clients) > 1024 {
		for k, c := range rl.clients {
			if now.Sub(c.lastSeen) > rl.cfg.IdleEviction {
				delete(rl.clients, k)
			}
		}
	}

	return cl.limiter.Allow()
}

// Handler is the gin middleware entrypoint.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	skip := make(map[string]struct{}, len(rl.cfg.SkipPaths))
	for _, p := range rl.cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		if !rl.allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    "RATE_LIMITED",
				"message": "too many requests",
			})
			return
		}
		c.Next()
	}
}
