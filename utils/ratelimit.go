package utils

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// incrWindow bumps the window counter and arms its expiry in one atomic
// step, so a counter can never outlive its window.
var incrWindow = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('EXPIRE', KEYS[1], ARGV[1])
elseif redis.call('TTL', KEYS[1]) < 0 then
	redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// RateLimitMiddleware applies a fixed-window request quota per client IP,
// counted in Redis so the quota survives restarts and covers all workers.
// Redis being unavailable fails open: admission control is an abuse guard,
// not a correctness mechanism.
func RateLimitMiddleware(rdb *redis.Client, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}
		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())
		ctx := c.Request.Context()
		count, err := incrWindow.Run(ctx, rdb, []string{key}, int(window.Seconds())).Int64()
		if err != nil {
			log.Printf("rate limit: redis incr failed: %v", err)
			c.Next()
			return
		}
		if count > int64(limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{"msg": "Too many requests, please try again later"})
			c.Abort()
			return
		}
		c.Next()
	}
}
