package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rateLimitWindow = time.Minute

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisRateLimiter counts requests per key in fixed one-minute windows.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int64
	now    func() time.Time
}

func NewRedisRateLimiter(redisURL string, perMinute int) (*RedisRateLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return &RedisRateLimiter{
		client: redis.NewClient(opts),
		limit:  int64(perMinute),
		now:    time.Now,
	}, nil
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := l.now().UTC().Truncate(rateLimitWindow).Unix()
	redisKey := "ratelimit:" + key + ":" + strconv.FormatInt(window, 10)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, 2*rateLimitWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= l.limit, nil
}

func (l *RedisRateLimiter) Close() error {
	return l.client.Close()
}

// rateLimitMiddleware fails open: a limiter error is logged and the request
// proceeds.
func (a *App) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.limiter == nil {
			c.Next()
			return
		}
		user, ok := authUserFromContext(c)
		if !ok {
			c.Next()
			return
		}
		allowed, err := a.limiter.Allow(c.Request.Context(), user.ID)
		if err != nil {
			a.log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
			writeError(c, http.StatusTooManyRequests, "Too many requests; try again in a minute")
			return
		}
		c.Next()
	}
}
