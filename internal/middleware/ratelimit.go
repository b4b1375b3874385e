package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/eventhub/eventhub-backend/internal/config"
	"github.com/eventhub/eventhub-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Limiter decides whether one more request under key fits in the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit returns a Gin middleware that rate-limits requests per scope and
// client IP. Limiter errors let the request through.
func RateLimit(limiter Limiter, scope string, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "rate_limit").Logger()

	return func(c *gin.Context) {
		key := config.CacheKey.RateLimitKey(scope, c.ClientIP())

		ok, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn().Err(err).Str("scope", scope).Msg("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !ok {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// RedisLimiter is a fixed-window counter shared by every server instance.
type RedisLimiter struct {
	rdb    *redis.Client
	rate   int
	window time.Duration
}

// NewRedisLimiter allows rate requests per window for each key.
func NewRedisLimiter(rdb *redis.Client, rate int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, rate: rate, window: window}
}

// Allow counts the request against key's current window. Redis errors are
// returned unchanged.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := key + ":" + strconv.FormatInt(time.Now().UnixNano()/int64(l.window), 10)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(l.rate), nil
}

// MemoryLimiter is a per-process token bucket.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // Tokens per interval
	interval time.Duration // Refill interval
	now      func() time.Time
}

type visitor struct {
	tokens   int
	lastSeen time.Time
}

// NewMemoryLimiter creates a MemoryLimiter (e.g., 10 requests per minute).
func NewMemoryLimiter(rate int, interval time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		interval: interval,
		now:      time.Now,
	}
}

// Allow takes one token from key's bucket, refilling it for every whole
// interval since the last refill. It never returns an error.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)

	v, exists := l.visitors[key]
	if !exists {
		v = &visitor{tokens: l.rate, lastSeen: now}
		l.visitors[key] = v
	}

	// Refill tokens based on elapsed time.
	if refill := int(now.Sub(v.lastSeen)/l.interval) * l.rate; refill > 0 {
		v.tokens = min(v.tokens+refill, l.rate)
		v.lastSeen = now
	}

	if v.tokens <= 0 {
		return false, nil
	}
	v.tokens--
	return true, nil
}

// evict drops visitors idle for three intervals. Callers hold the lock.
func (l *MemoryLimiter) evict(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > 3*l.interval {
			delete(l.visitors, key)
		}
	}
}

// FallbackLimiter asks primary first and, when primary fails, enforces the
// budget with fallback instead of letting the request through.
type FallbackLimiter struct {
	primary  Limiter
	fallback Limiter
	log      zerolog.Logger
}

// NewFallbackLimiter wraps primary, typically a RedisLimiter, with a
// per-process fallback such as a MemoryLimiter.
func NewFallbackLimiter(primary, fallback Limiter, log zerolog.Logger) *FallbackLimiter {
	return &FallbackLimiter{
		primary:  primary,
		fallback: fallback,
		log:      log.With().Str("component", "rate_limit").Logger(),
	}
}

// Allow returns the primary decision, or the fallback's when primary errors.
func (l *FallbackLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := l.primary.Allow(ctx, key)
	if err == nil {
		return ok, nil
	}
	l.log.Debug().Err(err).Str("key", key).Msg("Primary limiter failed, using fallback")
	return l.fallback.Allow(ctx, key)
}
