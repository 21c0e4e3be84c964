package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bus-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// fixedWindowScript increments the counter and gives it a TTL in the same
// call. A key left without a TTL is repaired on its next hit.
var fixedWindowScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 or redis.call('PTTL', KEYS[1]) < 0 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return count
`)

// hitCounter returns the number of hits on key inside the current window.
type hitCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisCounter struct {
	client *redis.Client
}

func (c redisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	return fixedWindowScript.Run(ctx, c.client, []string{key}, window.Milliseconds()).Int64()
}

// RateLimit counts requests per caller in a fixed redis window. A nil client
// disables the limit. Redis failures let the request through.
func RateLimit(client *redis.Client, config utils.RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	if client == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rateLimit(redisCounter{client: client}, config, logger)
}

func rateLimit(counter hitCounter, config utils.RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if config.Requests <= 0 || config.Window <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := r.RemoteAddr
			if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
				subject = userID.String()
			}
			key := fmt.Sprintf("%s:%s", config.Prefix, subject)

			count, err := counter.Hit(r.Context(), key, config.Window)
			if err != nil {
				logger.Warn("Rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(config.Requests) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Requests))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(config.Requests) {
				logger.Warn("Rate limit exceeded",
					zap.String("subject", subject),
					zap.Int64("count", count),
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(config.Window.Seconds())))
				utils.ResponseTooManyRequests(w, "Too many requests, slow down")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
