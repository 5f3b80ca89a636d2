package http

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/clipstream/clipstream-backend/internal/common/constants"
	"github.com/clipstream/clipstream-backend/internal/observability/metrics"
)

type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	cleanup  *time.Ticker
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		cleanup:  time.NewTicker(constants.RateLimitCleanupInterval),
	}

	go rl.cleanupLimiters()

	return rl
}

func (rl *RateLimiter) cleanupLimiters() {
	for range rl.cleanup.C {
		rl.mu.Lock()
		for key, limiter := range rl.limiters {
			if limiter.Allow() {
				delete(rl.limiters, key)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		limiter, exists = rl.limiters[key]
		if !exists {
			limiter = rate.NewLimiter(rl.rate, rl.burst)
			rl.limiters[key] = limiter
		}
		rl.mu.Unlock()
	}

	return limiter
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// AuthRateLimiter applies a tight per-client budget to the credential
// endpoints and a loose one everywhere else.
type AuthRateLimiter struct {
	credential *RateLimiter
	general    *RateLimiter
}

func NewAuthRateLimiter() *AuthRateLimiter {
	return &AuthRateLimiter{
		credential: NewRateLimiter(1, 5),
		general:    NewRateLimiter(50, 100),
	}
}

func (arl *AuthRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/health" || path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		limiter := arl.general
		if isCredentialPath(path) {
			limiter = arl.credential
		}

		if !limiter.Allow(GetClientIP(r)) {
			metrics.RateLimitBlocked.WithLabelValues(path).Inc()
			WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isCredentialPath(path string) bool {
	switch {
	case strings.HasSuffix(path, "/users/register"),
		strings.HasSuffix(path, "/users/login"),
		strings.HasSuffix(path, "/users/refresh-token"),
		strings.HasSuffix(path, "/users/change-password"):
		return true
	}
	return false
}
