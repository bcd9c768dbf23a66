package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"salaogestor_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window limiter backed by Redis, so the limit holds
// across every instance of the API.
type RateLimiter struct {
	limit    int
	window   time.Duration
	prefix   string
	failOpen bool
	incr     func(ctx context.Context, key string) (int64, error)
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// NewRateLimiter builds a limiter on rdb. Non-positive limit or window fall
// back to 10 per minute.
func NewRateLimiter(rdb redis.Scripter, limit int, window time.Duration, prefix string) *RateLimiter {
	rl := newRateLimiter(limit, window, prefix)
	rl.incr = func(ctx context.Context, key string) (int64, error) {
		res, err := fixedWindowScript.Run(ctx, rdb, []string{key}, rl.window.Milliseconds()).Result()
		if err != nil {
			return 0, err
		}
		switch v := res.(type) {
		case int64:
			return v, nil
		case string:
			return strconv.ParseInt(v, 10, 64)
		default:
			return 0, fmt.Errorf("unexpected redis script result type %T", res)
		}
	}
	return rl
}

func newRateLimiter(limit int, window time.Duration, prefix string) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "rl"
	}
	return &RateLimiter{limit: limit, window: window, prefix: prefix, failOpen: true}
}

// Middleware rejects clients over the limit with 429. Redis errors let the
// request through and are logged.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.prefix + ":" + c.ClientIP()
		count, err := rl.incr(c.Request.Context(), key)
		if err != nil {
			utils.LogWarn("rate limiter unavailable", map[string]interface{}{"error": err.Error(), "key": key})
			if rl.failOpen {
				c.Next()
				return
			}
			utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeInternalServerError, "Rate limiter unavailable", ""))
			return
		}
		if count > int64(rl.limit) {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			utils.RespondWithError(c, utils.NewAPIError(http.StatusTooManyRequests, utils.ErrCodeTooManyRequests, "Too many requests, try again later", ""))
			return
		}
		c.Next()
	}
}
