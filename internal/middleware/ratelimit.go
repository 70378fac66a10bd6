package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/config"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Counter counts hits on a key inside a fixed window and returns the running count.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimiter rejects a key's requests once it exceeds limit within window.
type RateLimiter struct {
	counter Counter
	limit   int64
	window  time.Duration
	keyFunc func(c *gin.Context) string
	log     zerolog.Logger
}

// NewRateLimiter creates a RateLimiter (e.g., 30 requests per minute).
func NewRateLimiter(counter Counter, limit int, window time.Duration, keyFunc func(c *gin.Context) string, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		limit:   int64(limit),
		window:  window,
		keyFunc: keyFunc,
		log:     log.With().Str("component", "rate_limiter").Logger(),
	}
}

// Middleware returns a Gin middleware enforcing the limit. Counter failures
// fail open; the request is let through and the error logged.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		key := rl.keyFunc(c)
		n, err := rl.counter.Hit(c.Request.Context(), key, rl.window)
		if err != nil {
			rl.log.Warn().Err(err).Str("key", key).Msg("Rate limit counter unavailable")
			c.Next()
			return
		}

		if n > rl.limit {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// SubmitKey buckets submit calls per authenticated user.
func SubmitKey(c *gin.Context) string {
	return config.CacheKey.SubmitRateKey(GetUserID(c).String())
}

// ClientIPKey buckets requests per client address.
func ClientIPKey(c *gin.Context) string {
	return fmt.Sprintf("ratelimit:ip:%s", c.ClientIP())
}

// RedisCounter keeps windows in Redis so limits hold across instances.
type RedisCounter struct {
	rdb *redis.Client
}

// NewRedisCounter creates a RedisCounter.
func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

// Hit increments key and starts its window on the first hit.
func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// MemoryCounter is an in-process Counter for single-instance deployments.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

// NewMemoryCounter creates a MemoryCounter and sweeps stale windows until ctx ends.
func NewMemoryCounter(ctx context.Context) *MemoryCounter {
	m := &MemoryCounter{windows: make(map[string]*memoryWindow)}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				m.cleanup(now)
			}
		}
	}()

	return m
}

// Hit increments key, opening a fresh window when the previous one lapsed.
func (m *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		m.windows[key] = w
	}
	w.count++
	return w.count, nil
}

func (m *MemoryCounter) cleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, key)
		}
	}
}
