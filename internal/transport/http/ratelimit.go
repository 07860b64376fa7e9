package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/emolinam31/Tickio/internal/config"
)

// Token bucket shared across instances via Redis. KEYS[1] is the bucket,
// ARGV: capacity, refill tokens, refill interval ms, now ms.
const tokenBucketScript = `
local bucket = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local capacity = tonumber(ARGV[1])
local refill = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now = tonumber(ARGV[4])

local tokens = tonumber(bucket[1])
local ts = tonumber(bucket[2])
if tokens == nil then
	tokens = capacity
	ts = now
end

local elapsed = now - ts
if elapsed >= interval then
	local ticks = math.floor(elapsed / interval)
	tokens = math.min(capacity, tokens + ticks * refill)
	ts = ts + ticks * interval
end

local allowed = 0
if tokens > 0 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HMSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('PEXPIRE', KEYS[1], interval * math.ceil(capacity / math.max(refill, 1)) * 2)
return allowed
`

// rateLimiter throttles mutating endpoints per owner key (falling back to the
// remote address). A nil client disables limiting, and Redis errors fail open
// so an outage never blocks sales.
func rateLimiter(client *redis.Client, cfg config.RateLimitConfig, log *logrus.Logger) echo.MiddlewareFunc {
	script := redis.NewScript(tokenBucketScript)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if client == nil {
				return next(c)
			}

			id := ownerKey(c)
			if id == "" {
				id = c.RealIP()
			}

			allowed, err := script.Run(c.Request().Context(), client,
				[]string{"ratelimit:" + id},
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				time.Now().UnixMilli(),
			).Int()
			if err != nil {
				log.WithError(err).Warn("rate limit check failed, allowing request")
				return next(c)
			}
			if allowed == 0 {
				return c.JSON(http.StatusTooManyRequests, errorResponse{
					Error: "too many requests",
					Code:  codeRateLimited,
				})
			}
			return next(c)
		}
	}
}
