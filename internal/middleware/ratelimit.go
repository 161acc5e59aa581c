package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	redis "github.com/redis/go-redis/v9"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Count     int
	WindowEnd time.Time
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) Decision
}

// RedisLimiter is a fixed-window Limiter shared by every API instance.
// Redis failures fail open.
type RedisLimiter struct {
	client  redis.Cmdable
	log     *slog.Logger
	prefix  string
	timeout time.Duration
}

// NewRedisLimiter wraps client. Use redis.NewClient in production.
func NewRedisLimiter(client redis.Cmdable, log *slog.Logger) *RedisLimiter {
	return &RedisLimiter{
		client:  client,
		log:     log,
		prefix:  "truck-billing:ratelimit:",
		timeout: 250 * time.Millisecond,
	}
}

// Allow increments the key's counter and starts its window on first use.
func (rl *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	redisKey := rl.prefix + key
	counter, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		rl.log.ErrorContext(ctx, "redis rate limiter error", "op", "incr", "error", err)
		return Decision{Allowed: true}
	}
	if counter == 1 {
		if err := rl.client.Expire(ctx, redisKey, window).Err(); err != nil {
			rl.log.ErrorContext(ctx, "redis rate limiter error", "op", "expire", "error", err)
		}
	}
	ttl, err := rl.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = window
	}
	return Decision{
		Allowed:   int(counter) <= limit,
		Count:     int(counter),
		WindowEnd: time.Now().Add(ttl),
	}
}

// RateLimitHook is notified of every rejected request.
type RateLimitHook func(route string)

// NewRateLimiter returns a middleware that allows limit requests per window
// for each caller, keyed by authenticated user id or else by remote IP.
// A nil limiter disables the middleware.
func NewRateLimiter(limiter Limiter, limit int, window time.Duration, onLimited RateLimitHook) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := limiter.Allow(r.Context(), rateLimitKey(r), limit, window)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			remaining := limit - d.Count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !d.Allowed {
				if !d.WindowEnd.IsZero() {
					secs := int(time.Until(d.WindowEnd).Seconds())
					if secs < 1 {
						secs = 1
					}
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				if onLimited != nil {
					onLimited(routePattern(r))
				}
				writeJSONError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if id, ok := CallerID(r.Context()); ok {
		return "user:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		host = "unknown"
	}
	return "ip:" + host
}

// routePattern returns the matched chi route pattern, or the raw path when
// the request was not routed by chi.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
