package middleware

import (
    "log/slog"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/recipe-api/internal/config"
)

// RateKeyFunc names the bucket a request draws from.
type RateKeyFunc func(c echo.Context) string

// tokenBucket refills, takes one token if available and returns
// {allowed, remaining, retry_after_ms}.  State lives in one hash per key.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(state[1]) or capacity
local ts = tonumber(state[2]) or now_ms

local steps = math.floor(math.max(0, now_ms - ts) / interval_ms)
if steps > 0 then
    tokens = math.min(capacity, tokens + steps * refill)
    ts = ts + steps * interval_ms
end

local allowed, retry = 0, 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    retry = math.max(0, interval_ms - (now_ms - ts))
end

redis.call('HSET', key, 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', key, ttl)
return {allowed, tokens, retry}
`)

// RateKey builds bucket keys from cfg.KeyParts.  The user part is the
// caller's id from IdentityFrom, so Identify must run first; anonymous
// callers share the "anon" user.
func RateKey(cfg config.RateLimitConfig) RateKeyFunc {
    parts := cfg.KeyParts
    if len(parts) == 0 {
        parts = []string{config.KeyIP, config.KeyUser, config.KeyRoute}
    }
    return func(c echo.Context) string {
        key := []string{cfg.Prefix}
        for _, p := range parts {
            switch p {
            case config.KeyIP:
                ip := c.RealIP()
                if ip == "" {
                    ip = "unknown"
                }
                key = append(key, "ip", ip)
            case config.KeyUser:
                user := "anon"
                if id := IdentityFrom(c); id.Authenticated() {
                    user = strconv.FormatUint(id.UserID, 10)
                }
                key = append(key, "user", user)
            case config.KeyRoute:
                key = append(key, "route", c.Request().Method+" "+c.Path())
            }
        }
        return strings.Join(key, ":")
    }
}

// NewTokenBucket limits requests with a Redis-side token bucket per
// key(c).  Redis errors fail open.  A nil client or a disabled config
// yields a pass-through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, key RateKeyFunc) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    if key == nil {
        key = RateKey(cfg)
    }
    ttlSeconds := int64(math.Ceil(cfg.TTL.Seconds()))
    limit := strconv.Itoa(cfg.Capacity)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            k := key(c)
            ctx := c.Request().Context()
            res, err := tokenBucket.Run(ctx, rdb, []string{k},
                time.Now().UnixMilli(), cfg.Capacity, cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(), ttlSeconds).Int64Slice()
            if err != nil || len(res) != 3 {
                slog.WarnContext(ctx, "rate limiter unavailable, allowing request", "key", k, "err", err)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", limit)
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
            if res[0] != 1 {
                rateLimitRejects.Inc()
                h.Set("Retry-After", strconv.FormatInt(retryAfterSeconds(res[2]), 10))
                return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
            }
            return next(c)
        }
    }
}

// retryAfterSeconds rounds a millisecond wait up to whole seconds.
func retryAfterSeconds(ms int64) int64 {
    if ms <= 0 {
        return 0
    }
    return (ms + 999) / 1000
}
