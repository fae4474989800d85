package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter counts requests per client IP in Redis. When Redis is
// unreachable it falls back to in-process token buckets.
type RateLimiter struct {
	redis     *redis.Client
	logger    *logrus.Logger
	perMinute int
	burst     int

	mu       sync.Mutex
	visitors map[string]*visitor
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewRateLimiter creates a limiter and starts the fallback cleanup loop
func NewRateLimiter(redisClient *redis.Client, logger *logrus.Logger, perMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		redis:     redisClient,
		logger:    logger,
		perMinute: perMinute,
		burst:     burst,
		visitors:  make(map[string]*visitor),
	}
	rl.ctx, rl.cancel = context.WithCancel(context.Background())
	go rl.cleanupLoop(time.Minute, 3*time.Minute)
	return rl
}

// Middleware returns the gin handler
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		remaining, allowed, err := rl.allowRedis(c.Request.Context(), clientIP)
		if err != nil {
			rl.logger.WithError(err).Debug("Rate limit store unavailable, using local limiter")
			allowed = rl.local(clientIP).Allow()
			remaining = -1
		}

		if !allowed {
			c.Header("Retry-After", "60")
			abort(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.perMinute))
		if remaining >= 0 {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		c.Next()
	}
}

func (rl *RateLimiter) allowRedis(ctx context.Context, clientIP string) (int, bool, error) {
	if rl.redis == nil {
		return 0, false, errors.New("no redis client")
	}

	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	key := fmt.Sprintf("rate_limit:%s", clientIP)

	count, err := rl.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, false, err
	}
	if count == 1 {
		// First hit opens the window
		if err := rl.redis.Expire(ctx, key, time.Minute).Err(); err != nil {
			return 0, false, err
		}
	}

	current := int(count)
	if current > rl.perMinute {
		return 0, false, nil
	}
	return rl.perMinute - current, true, nil
}

func (rl *RateLimiter) local(clientIP string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[clientIP]
	if !exists {
		limit := rate.Limit(float64(rl.perMinute) / 60)
		v = &visitor{limiter: rate.NewLimiter(limit, rl.burst)}
		rl.visitors[clientIP] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) cleanupLoop(period, ttl time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastSeen) > ttl {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.ctx.Done():
			return
		}
	}
}

// Shutdown stops the cleanup goroutine
func (rl *RateLimiter) Shutdown() {
	rl.cancel()
}
