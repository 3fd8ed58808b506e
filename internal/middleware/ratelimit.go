// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/metrics"
)

type RateLimitConfig struct {
	// Name prefixes the Redis keys and labels rejections, so several
	// limiters can share one Redis without sharing buckets.
	Name       string
	Limit      redis_rate.Limit
	KeyFunc    func(*http.Request) string
	FailOpen   bool
	BypassFunc func(*http.Request) bool
	OnLimited  func(http.ResponseWriter, *http.Request, *redis_rate.Result)
	// LocalIdleTTL is how long an in-process bucket outlives its last
	// request while Redis is unreachable. Zero means defaultLocalIdleTTL.
	LocalIdleTTL time.Duration
}

const defaultLocalIdleTTL = 10 * time.Minute

// RateLimiter enforces Limit in Redis and, when Redis errors, in
// per-key token buckets held by this process with the same Limit.
type RateLimiter struct {
	limiter *redis_rate.Limiter
	local   *localBuckets
	config  RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	if cfg.Name == "" {
		cfg.Name = "global"
	}
	if cfg.LocalIdleTTL <= 0 {
		cfg.LocalIdleTTL = defaultLocalIdleTTL
	}

	return &RateLimiter{
		limiter: redis_rate.NewLimiter(rdb),
		local:   newLocalBuckets(cfg.Limit, cfg.LocalIdleTTL),
		config:  cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.BypassFunc != nil && rl.config.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.config.Name + ":" + rl.config.KeyFunc(r)
		res, err := rl.allow(r.Context(), key)
		if err != nil {
			if rl.config.FailOpen {
				slog.Warn("rate limiter error, failing open",
					"error", err,
					"key", key,
				)
				next.ServeHTTP(w, r)
				return
			}
			core.JSON(w, http.StatusServiceUnavailable, core.Response{
				Success: false,
				Error:   "service unavailable",
				Code:    core.CodeInternal,
			})
			return
		}

		setRateLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			metrics.RecordRateLimited(rl.config.Name)
			if rl.config.OnLimited != nil {
				rl.config.OnLimited(w, r, res)
				return
			}
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(
	ctx context.Context,
	key string,
) (*redis_rate.Result, error) {
	res, err := rl.limiter.Allow(ctx, key, rl.config.Limit)
	if err != nil {
		slog.Debug("redis rate limiter unavailable, using local buckets",
			"limiter", rl.config.Name,
			"error", err,
		)
		return rl.local.allow(key, time.Now()), nil
	}
	return res, nil
}

// KeyByIP buckets by the client address resolved by RealIP.
func KeyByIP(r *http.Request) string {
	return "ip:" + GetClientIP(r)
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))

	windowSecs := int(limit.Period.Seconds())
	h.Set("RateLimit-Policy", fmt.Sprintf(`%d;w=%d`, limit.Rate, windowSecs))
	h.Set(
		"RateLimit",
		fmt.Sprintf(`%d;t=%d`, res.Remaining, int(res.ResetAfter.Seconds())),
	)
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := int(res.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSON(w, http.StatusTooManyRequests, core.Response{
		Success: false,
		Error: fmt.Sprintf(
			"rate limit exceeded, retry after %d seconds",
			retryAfter,
		),
		Code: core.CodeRateLimited,
	})
}

type localBucket struct {
	tokens *rate.Limiter
	seen   time.Time
}

// localBuckets mirrors one named limiter in memory. Idle buckets are
// swept on access, at most once per idleTTL.
type localBuckets struct {
	limit   redis_rate.Limit
	idleTTL time.Duration

	mu        sync.Mutex
	buckets   map[string]*localBucket
	nextSweep time.Time
}

func newLocalBuckets(limit redis_rate.Limit, idleTTL time.Duration) *localBuckets {
	return &localBuckets{
		limit:   limit,
		idleTTL: idleTTL,
		buckets: make(map[string]*localBucket),
	}
}

func (b *localBuckets) allow(key string, now time.Time) *redis_rate.Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.After(b.nextSweep) {
		b.sweep(now)
	}

	bucket, ok := b.buckets[key]
	if !ok {
		bucket = &localBucket{
			tokens: rate.NewLimiter(b.perSecond(), b.limit.Burst),
		}
		b.buckets[key] = bucket
	}
	bucket.seen = now

	allowed := bucket.tokens.AllowN(now, 1)
	left := bucket.tokens.TokensAt(now)

	res := &redis_rate.Result{
		Limit:      b.limit,
		Remaining:  max(int(left), 0),
		RetryAfter: -1,
		ResetAfter: b.refill(float64(b.limit.Burst) - left),
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = b.refill(1 - left)
	}
	return res
}

func (b *localBuckets) sweep(now time.Time) {
	cutoff := now.Add(-b.idleTTL)
	for key, bucket := range b.buckets {
		if bucket.seen.Before(cutoff) {
			delete(b.buckets, key)
		}
	}
	b.nextSweep = now.Add(b.idleTTL)
}

func (b *localBuckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buckets)
}

func (b *localBuckets) perSecond() rate.Limit {
	if b.limit.Rate <= 0 || b.limit.Period <= 0 {
		return 0
	}
	return rate.Limit(float64(b.limit.Rate) / b.limit.Period.Seconds())
}

// refill is the time for tokens to drip back into a bucket.
func (b *localBuckets) refill(tokens float64) time.Duration {
	if tokens <= 0 {
		return 0
	}
	if b.limit.Rate <= 0 {
		return b.limit.Period
	}
	return time.Duration(tokens * float64(b.limit.Period) / float64(b.limit.Rate))
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return PerWindow(rate, burst, time.Minute)
}

func PerWindow(rate, burst int, window time.Duration) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: window,
	}
}
