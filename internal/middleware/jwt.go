package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/projetocarbone/roma-backend/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject and email claims into the request
// context. It is a pure gate: no I/O, no side effects beyond c.Set.
// Handlers behind it read the identity via c.Get("user_id") (uint64) and
// c.Get("email") (string). Missing, malformed and expired tokens all
// answer 401; the body distinguishes the missing-header case the way the
// web client expects.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "Token não fornecido",
				})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.VerifyToken(secret, raw)
			if err != nil {
				// Expired and invalid both gate with 401; the errorCode
				// lets the client decide whether a refresh is worth trying.
				code := "TOKEN_INVALID"
				if errors.Is(err, utils.ErrTokenExpired) {
					code = "TOKEN_EXPIRED"
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success":   false,
					"message":   "Token inválido ou expirado",
					"errorCode": code,
				})
			}

			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			return next(c)
		}
	}
}

// UserID extracts the authenticated user id placed by JWTAuth. It returns
// 0 when the request did not pass through the gate.
func UserID(c echo.Context) uint64 {
	if v, ok := c.Get("user_id").(uint64); ok {
		return v
	}
	return 0
}

// UserEmail extracts the authenticated email placed by JWTAuth.
func UserEmail(c echo.Context) string {
	if v, ok := c.Get("email").(string); ok {
		return v
	}
	return ""
}
