package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxLocalBuckets bounds the in-process limiter table.
const maxLocalBuckets = 10000

// tokenBucket is a Token Bucket implemented in Lua for atomicity.
// Bucket state is {last_refill, tokens}; timestamps are fractional seconds.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local requested = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	local allowed = 0
	if tokens >= requested then
		tokens = tokens - requested
		allowed = 1
	end

	redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
	redis.call('EXPIRE', key, 60)
	return allowed
`)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// RateLimitRecorder counts rejected requests.
type RateLimitRecorder interface {
	RecordRateLimited(route string)
}

// RateLimiter limits requests per client and route. Buckets live in Redis
// when a client is configured so that replicas share them, otherwise in
// process.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	log    *zap.Logger
	rec    RateLimitRecorder
	now    func() time.Time

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// NewRateLimiter creates a new rate limiter. client and rec may be nil.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, rec RateLimitRecorder, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		log:    log,
		rec:    rec,
		now:    time.Now,
		local:  make(map[string]*rate.Limiter),
	}
}

// Middleware returns the Gin middleware enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || !rl.config.Enabled {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, route, c.ClientIP())

		if rl.Allow(c.Request.Context(), key) {
			c.Next()
			return
		}

		rl.log.Warn("rate limit exceeded",
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
		)
		if rl.rec != nil {
			rl.rec.RecordRateLimited(route)
		}
		msg := fmt.Sprintf("Rate limit exceeded: %.2f requests/second (burst capacity: %d)",
			rl.config.RequestsPerSecond, rl.config.BurstCapacity)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":   "rate_limit_exceeded",
			"message": msg,
		})
	}
}

// Allow reports whether one more request for key fits in its bucket.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl.client == nil {
		return rl.allowLocal(key)
	}

	now := float64(rl.now().UnixMicro()) / 1e6
	allowed, err := tokenBucket.Run(ctx, rl.client, []string{key},
		rl.config.RequestsPerSecond,
		rl.config.BurstCapacity,
		now,
		1,
	).Int64()
	if err != nil {
		// On Redis error, fall back to the in-process bucket
		rl.log.Warn("rate limiter redis error, using local limiter", zap.String("key", key), zap.Error(err))
		return rl.allowLocal(key)
	}
	return allowed == 1
}

func (rl *RateLimiter) allowLocal(key string) bool {
	rl.mu.Lock()
	lim, ok := rl.local[key]
	if !ok {
		if len(rl.local) >= maxLocalBuckets {
			rl.local = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.BurstCapacity)
		rl.local[key] = lim
	}
	rl.mu.Unlock()

	return lim.AllowN(rl.now(), 1)
}
