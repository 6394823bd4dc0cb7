package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"workforce/internal/platform/logging"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/shared"
)

type RateLimitKeyFunc func(r *http.Request) string

// RateLimitConfig is requests per window with an optional burst; Burst
// defaults to Requests.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// Strict derives the tighter budget used for login and payment routes as a
// fraction of the general one, never below five requests per window.
func (c RateLimitConfig) Strict(ratio float64) RateLimitConfig {
	if ratio <= 0 || ratio > 1 {
		ratio = 0.1
	}
	n := max(int(float64(c.Requests)*ratio), 5)
	return RateLimitConfig{Requests: n, Window: c.Window, Burst: n}
}

type rateLimiter struct {
	limit       rate.Limit
	burst       int
	config      RateLimitConfig
	keyFn       RateLimitKeyFunc
	limiters    sync.Map
	mu          sync.Mutex
	lastCleanup time.Time
	now         func() time.Time
}

func newRateLimiter(cfg RateLimitConfig, keyFn RateLimitKeyFunc) *rateLimiter {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.Requests
	}
	if keyFn == nil {
		keyFn = ActorOrIPKey
	}
	return &rateLimiter{
		limit:       rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:       cfg.Burst,
		config:      cfg,
		keyFn:       keyFn,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (rl *rateLimiter) limiter(key string) *rate.Limiter {
	if l, ok := rl.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}
	l, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.limit, rl.burst))
	rl.maybeCleanup()
	return l.(*rate.Limiter)
}

// maybeCleanup drops idle limiters, those whose bucket has refilled.
func (rl *rateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if time.Since(rl.lastCleanup) < 5*time.Minute {
		return
	}
	rl.lastCleanup = time.Now()
	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

func (rl *rateLimiter) allow(w http.ResponseWriter, r *http.Request) bool {
	if rl.config.Requests <= 0 {
		return true
	}
	key := rl.keyFn(r)
	if key == "" {
		key = shared.RequestIP(r)
	}
	l := rl.limiter(key)
	now := rl.now()

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.config.Requests))
	if l.AllowN(now, 1) {
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(int(l.TokensAt(now)), 0)))
		return true
	}

	reservation := l.ReserveN(now, 1)
	retryAfter := max(int(reservation.DelayFrom(now).Seconds()), 1)
	reservation.CancelAt(now)

	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	logging.FromContext(r.Context()).Warn("rate limit exceeded",
		"key", key,
		"path", r.URL.Path,
		"method", r.Method,
		"limit", rl.config.Requests,
		"retryAfter", retryAfter,
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// RateLimit applies a token bucket per key, by default the caller or client IP.
func RateLimit(cfg RateLimitConfig, keyFn RateLimitKeyFunc) func(http.Handler) http.Handler {
	rl := newRateLimiter(cfg, keyFn)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ActorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return "ip:" + shared.RequestIP(r)
}

func IPKey(r *http.Request) string {
	return "ip:" + shared.RequestIP(r)
}

// RoutePrefixKey scopes another key function to the request path so strict
// buckets on different routes do not share tokens.
func RoutePrefixKey(keyFn RateLimitKeyFunc) RateLimitKeyFunc {
	return func(r *http.Request) string {
		return strings.TrimSuffix(r.URL.Path, "/") + "|" + keyFn(r)
	}
}
