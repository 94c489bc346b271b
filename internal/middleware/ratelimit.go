package middleware

import (
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/projetocarbone/roma-backend/internal/config"
)

// RateLimit returns a fixed-window limiter keyed on client IP + route,
// backed by Redis INCR/EXPIRE. It protects the unauthenticated auth
// endpoints from credential stuffing and signup floods. When disabled or
// when Redis is unreachable the middleware passes everything through;
// availability wins over throttling here.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := cfg.Prefix + ":" + ip + ":" + c.Request().Method + ":" + c.Path()
			ctx := c.Request().Context()

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				log.Printf("ratelimit: redis incr failed: %v", err)
				return next(c)
			}
			if n == 1 {
				if err := rdb.Expire(ctx, key, cfg.Window).Err(); err != nil {
					log.Printf("ratelimit: redis expire failed: %v", err)
				}
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				retry, err := rdb.TTL(ctx, key).Result()
				if err == nil && retry > 0 {
					c.Response().Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
				}
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"success": false,
					"message": "Muitas tentativas. Aguarde um momento e tente novamente.",
				})
			}
			return next(c)
		}
	}
}
