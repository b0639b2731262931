package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/agrovia/farmstead/internal/http/response"
	"github.com/agrovia/farmstead/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles requests per client key using a Redis counter
// with a rolling window. Redis failures fail open: throttling is a
// nicety, availability is not.
type RateLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

func NewRateLimiter(client *redis.Client, requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, requests: requests, window: window}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.client == nil {
				next.ServeHTTP(w, r)
				return
			}

			if !rl.allow(r.Context(), clientIP(r)) {
				response.RateLimit(w, "Too many attempts. Try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// Hash the key so raw client addresses never land in Redis.
	sum := sha256.Sum256([]byte(key))
	redisKey := fmt.Sprintf("ratelimit:%x", sum)

	count, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		logger.WarnContext(ctx, "rate limit check failed", "error", err)
		return true
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			logger.WarnContext(ctx, "rate limit expire failed", "error", err)
		}
	}

	return count <= int64(rl.requests)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
