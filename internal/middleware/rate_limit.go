package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware allows limit requests per client IP and path within each fixed window.
// Redis failures let the request through.
func RateLimitMiddleware(redisClient *redis.Client, limit int, window time.Duration, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if redisClient == nil || limit <= 0 {
				return next(c)
			}

			key := fmt.Sprintf("rate_limit:%s:%s", c.Path(), c.RealIP())

			ctx := c.Request().Context()
			count, err := redisClient.Incr(ctx, key).Result()
			if err != nil {
				log.Warn("rate limit check failed", "key", key, "error", err)
				return next(c)
			}

			if count == 1 {
				if err := redisClient.Expire(ctx, key, window).Err(); err != nil {
					log.Warn("rate limit expiry failed", "key", key, "error", err)
				}
			}

			remaining := int64(limit) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(limit) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests. Please try again later.")
			}

			return next(c)
		}
	}
}
