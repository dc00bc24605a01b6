package middlewares

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Counter counts hits per key in fixed windows. Hit returns the count
// including this hit and the time until the window resets.
type Counter interface {
	Hit(ctx context.Context, key string) (int, time.Duration, error)
}

type RateLimiter struct {
	counter Counter
	limit   int
	log     *slog.Logger
}

func NewRateLimiter(counter Counter, limit int, log *slog.Logger) *RateLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimiter{counter: counter, limit: limit, log: log}
}

// RateLimiterMiddleware enforces the limit for the key derived by keyFn.
// If the counter itself fails the request is let through.
func (rl *RateLimiter) RateLimiterMiddleware(scope string, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		count, resetIn, err := rl.counter.Hit(c.Request.Context(), "ratelimit:"+scope+":"+key)
		if err != nil {
			rl.log.WarnContext(c.Request.Context(), "rate limiter unavailable", "scope", scope, "err", err)
			c.Next()
			return
		}

		if count > rl.limit {
			retryAfter := int(resetIn.Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abortJSON(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again shortly.")
			return
		}

		c.Next()
	}
}

// MemoryCounter is the single-process Counter. Expired buckets are swept at
// most once per window, so idle clients do not accumulate.
type MemoryCounter struct {
	mu        sync.Mutex
	window    time.Duration
	clients   map[string]*clientBucket
	nextSweep time.Time
	now       func() time.Time
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryCounter(window time.Duration) *MemoryCounter {
	return &MemoryCounter{
		window:  window,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (m *MemoryCounter) Hit(_ context.Context, key string) (int, time.Duration, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if !now.Before(m.nextSweep) {
		m.sweep(now)
		m.nextSweep = now.Add(m.window)
	}

	b, ok := m.clients[key]

	if !ok || now.After(b.windowEnd) {
		b = &clientBucket{windowEnd: now.Add(m.window)}
		m.clients[key] = b
	}

	b.count++

	return b.count, b.windowEnd.Sub(now), nil
}

// sweep drops buckets whose window has ended. Caller holds mu.
func (m *MemoryCounter) sweep(now time.Time) {
	for key, b := range m.clients {
		if now.After(b.windowEnd) {
			delete(m.clients, key)
		}
	}
}

type windowIncrementer interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisCounter shares the window across API instances.
type RedisCounter struct {
	client windowIncrementer
	window time.Duration
}

func NewRedisCounter(client windowIncrementer, window time.Duration) *RedisCounter {
	return &RedisCounter{client: client, window: window}
}

func (r *RedisCounter) Hit(ctx context.Context, key string) (int, time.Duration, error) {
	n, ttl, err := r.client.IncrWindow(ctx, key, r.window)
	if err != nil {
		return 0, 0, err
	}

	return int(n), ttl, nil
}

// KeyByIP is for unauthenticated endpoints.
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// KeyByUserOrIP prefers the authenticated user id.
func KeyByUserOrIP(c *gin.Context) string {
	id, ok := UserIDFromContext(c)

	if ok {
		return "user:" + id
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
