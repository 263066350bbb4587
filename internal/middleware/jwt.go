package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rezonate/auth-service/internal/model"
)

// TokenVerifier resolves a bearer access token to its user.  Verification
// must fail closed: any signature, expiry or session problem is an error.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, raw string) (model.User, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// against the verifier and injects the resolved identity into the request
// context.  Unlike stateless JWT checking, the verifier also requires a
// live session row for the token, so revoked tokens die immediately.
// Handlers read the identity via c.Get("user_id"), c.Get("role") and
// c.Get("user").
func JWTAuth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			u, err := verifier.VerifyToken(c.Request().Context(), raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set("user_id", u.ID)
			c.Set("role", string(u.Role))
			c.Set("user", u)
			c.Set("token", raw)
			return next(c)
		}
	}
}
