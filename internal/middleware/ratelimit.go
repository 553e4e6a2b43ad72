// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/currency-tracker/internal/core"
)

const keyPrefix = "ratelimit:ip:"

type RateLimitConfig struct {
	Limit    redis_rate.Limit
	KeyFunc  func(*http.Request) string
	Exempt   func(*http.Request) bool
	FailOpen bool
}

type RateLimiter struct {
	shared *redis_rate.Limiter
	local  *localLimiter
	cfg    RateLimitConfig
}

// NewRateLimiter limits through redis when rdb is non-nil and through an
// in-process token bucket otherwise.
func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}

	rl := &RateLimiter{local: newLocalLimiter(), cfg: cfg}
	if rdb != nil {
		rl.shared = redis_rate.NewLimiter(rdb)
	}
	return rl
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.cfg.Exempt != nil && rl.cfg.Exempt(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.cfg.KeyFunc(r)
		res, err := rl.allow(r.Context(), key)
		switch {
		case err != nil && rl.cfg.FailOpen:
			slog.WarnContext(r.Context(), "rate limiter error, failing open",
				"error", err,
				"key", key,
			)
		case err != nil:
			core.Fail(w, r, http.StatusServiceUnavailable, "Service unavailable")
			return
		default:
			writeLimitHeaders(w, res)
			if res.Allowed == 0 {
				writeRateLimitExceeded(w, r, res)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (*redis_rate.Result, error) {
	if rl.shared != nil {
		res, err := rl.shared.Allow(ctx, key, rl.cfg.Limit)
		if err == nil {
			return res, nil
		}
		slog.WarnContext(ctx, "redis rate limiter unavailable, using local limiter",
			"error", err,
		)
	}
	return rl.local.allow(key, rl.cfg.Limit)
}

// ExemptPaths skips limiting for exact path matches such as probes.
func ExemptPaths(paths ...string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		return slices.Contains(paths, r.URL.Path)
	}
}

// KeyByIP keys on the connecting peer and ignores forwarding headers.
func KeyByIP(r *http.Request) string {
	return keyPrefix + ClientIP(r, nil)
}

// KeyByClient keys on the client address, reading forwarding headers only
// when the peer is one of the trusted proxies.
func KeyByClient(trusted []netip.Prefix) func(*http.Request) string {
	return func(r *http.Request) string {
		return keyPrefix + ClientIP(r, trusted)
	}
}

// KeyByEndpoint scopes the limit per client and path, with id segments
// collapsed so /users/1 and /users/2 share a bucket.
func KeyByEndpoint(trusted []netip.Prefix) func(*http.Request) string {
	byClient := KeyByClient(trusted)
	return func(r *http.Request) string {
		segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		for i, seg := range segments {
			if isIDSegment(seg) {
				segments[i] = "{id}"
			}
		}
		return byClient(r) + ":endpoint:/" + strings.Join(segments, "/")
	}
}

func isIDSegment(s string) bool {
	if _, ok := core.ParseID(s); ok {
		return true
	}
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func writeLimitHeaders(w http.ResponseWriter, res *redis_rate.Result) {
	h := w.Header()
	limit := res.Limit
	reset := int(res.ResetAfter.Seconds())

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf("%d;t=%d", res.Remaining, reset))
}

func writeRateLimitExceeded(w http.ResponseWriter, r *http.Request, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSON(w, r, http.StatusTooManyRequests, core.M{
		"success": false,
		"code":    "RATE_LIMITED",
		"message": fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter),
	})
}

const (
	localLimiterSize = 10_000
	localEntryTTL    = 10 * time.Minute
)

// localLimiter keeps one token bucket per key in an expirable LRU, so idle
// clients age out without a sweeper goroutine.
type localLimiter struct {
	mu      sync.Mutex
	buckets *expirable.LRU[string, *rate.Limiter]
}

func newLocalLimiter() *localLimiter {
	return &localLimiter{
		buckets: expirable.NewLRU[string, *rate.Limiter](localLimiterSize, nil, localEntryTTL),
	}
}

func (l *localLimiter) bucket(key string, limit redis_rate.Limit) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets.Get(key); ok {
		return b
	}

	b := rate.NewLimiter(perSecond(limit), limit.Burst)
	l.buckets.Add(key, b)
	return b
}

func (l *localLimiter) allow(
	key string,
	limit redis_rate.Limit,
) (*redis_rate.Result, error) {
	if limit.Rate <= 0 || limit.Period <= 0 {
		return nil, fmt.Errorf("invalid rate limit %d per %s", limit.Rate, limit.Period)
	}

	b := l.bucket(key, limit)
	interval := time.Duration(float64(time.Second) / float64(perSecond(limit)))

	res := &redis_rate.Result{
		Limit:      limit,
		ResetAfter: interval,
		RetryAfter: -1,
	}

	if b.Allow() {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	res.Remaining = max(int(b.Tokens()), 0)

	return res, nil
}

func perSecond(limit redis_rate.Limit) rate.Limit {
	return rate.Limit(float64(limit.Rate) / limit.Period.Seconds())
}

// Window builds a limit of rate requests per period. A non-positive burst
// falls back to rate and a non-positive period to one minute.
func Window(rate, burst int, period time.Duration) redis_rate.Limit {
	if period <= 0 {
		period = time.Minute
	}
	if burst <= 0 {
		burst = rate
	}
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: period}
}
