package httpmiddleware

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a client key may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// TokenBucket is an in-memory per-key limiter refilled once per minute.
type TokenBucket struct {
	capacity int
	rate     int
	now      func() time.Time

	mu    sync.Mutex
	state map[string]*bucket
}

type bucket struct {
	tokens int
	last   time.Time
}

// NewTokenBucket creates a limiter with capacity tokens refilled at perMinute.
func NewTokenBucket(capacity, perMinute int) *TokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	return &TokenBucket{
		capacity: capacity,
		rate:     perMinute,
		now:      time.Now,
		state:    make(map[string]*bucket),
	}
}

// Allow takes one token for key.
func (l *TokenBucket) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.state[key]
	if !ok {
		l.state[key] = &bucket{tokens: l.capacity - 1, last: now}
		return l.capacity > 0
	}
	refill := int(now.Sub(b.last).Minutes() * float64(l.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// RedisWindow is a fixed one-minute window counter shared across instances.
type RedisWindow struct {
	client    *redis.Client
	perMinute int
	prefix    string
	now       func() time.Time
}

// NewRedisWindow creates a Redis-backed limiter.
func NewRedisWindow(client *redis.Client, perMinute int) *RedisWindow {
	return &RedisWindow{client: client, perMinute: perMinute, prefix: "rollcall:ratelimit:", now: time.Now}
}

// Allow increments the counter for the current window. Redis errors fail open.
func (l *RedisWindow) Allow(ctx context.Context, key string) bool {
	window := l.now().Unix() / 60
	k := l.prefix + key + ":" + strconv.FormatInt(window, 10)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("rate limit: redis unavailable, allowing request: %v", err)
		return true
	}
	return incr.Val() <= int64(l.perMinute)
}

// RateLimit returns gin middleware enforcing per-IP limits.
func RateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow(c.Request.Context(), ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}
