// Package router wires handlers into the Echo instance. Each Register*
// function owns one URL area so main stays a pure composition root.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/projetocarbone/roma-backend/internal/config"
	"github.com/projetocarbone/roma-backend/internal/handler"
	"github.com/projetocarbone/roma-backend/internal/middleware"
	"github.com/projetocarbone/roma-backend/internal/storage"
)

// RegisterInfra mounts the liveness probe and the Prometheus scrape
// endpoint outside the /api tree.
func RegisterInfra(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth mounts the account endpoints under /api/auth. The public
// credential endpoints sit behind the Redis rate limiter; everything that
// touches an existing session requires a valid access token.
func RegisterAuth(e *echo.Echo, h *handler.AuthHandler, avatars *storage.AvatarStore, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/api/auth")

	limited := g.Group("", middleware.RateLimit(rl, rdb))
	limited.POST("/login", h.Login)
	limited.POST("/cadastro", h.Cadastro)
	limited.POST("/recuperar-senha", h.RecuperarSenha)

	g.POST("/redefinir-senha", h.RedefinirSenha)
	g.POST("/refresh-token", h.Refresh)

	auth := g.Group("", middleware.JWTAuth(h.Cfg.JWTSecret))
	auth.GET("/me", h.Me)
	auth.PUT("/profile", h.UpdateProfile)
	auth.PUT("/change-password", h.ChangePassword)
	auth.PUT("/settings", h.UpdateSettings)
	auth.GET("/activities", h.ListActivities)
	auth.POST("/logout", h.Logout)
	auth.POST("/avatar", h.UploadAvatar(avatars))
}

// RegisterCoupons mounts the coupon endpoints. Both require a session so
// anonymous visitors cannot enumerate codes.
func RegisterCoupons(e *echo.Echo, h *handler.CouponHandler, jwtSecret string) {
	g := e.Group("/api/cupons", middleware.JWTAuth(jwtSecret))
	g.POST("/validar", h.Validar)
	g.GET("", h.Listar)
}

// RegisterPayments mounts the checkout endpoints. The webhook stays open
// because the provider calls it without our tokens.
func RegisterPayments(e *echo.Echo, h *handler.PaymentHandler, jwtSecret string) {
	g := e.Group("/api/pagamento")
	g.POST("/webhook", h.Webhook)

	auth := g.Group("", middleware.JWTAuth(jwtSecret))
	auth.POST("/processar", h.Processar)
	auth.GET("/status/:id", h.Status)
	auth.POST("/cancelar/:id", h.Cancelar)
}
