package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/rezonate/auth-service/internal/config"
	"github.com/rezonate/auth-service/internal/handler"
	"github.com/rezonate/auth-service/internal/middleware"
	"github.com/rezonate/auth-service/internal/model"
	"github.com/rezonate/auth-service/internal/security"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes and their middleware.
// Unauthenticated token operations live under /v1/auth; everything that
// needs a verified session lives under /v1.  The login route additionally
// sits behind the Redis token bucket to slow credential stuffing (a nil
// Redis client disables it).
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, verifier middleware.TokenVerifier, rdb *redis.Client) {
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	g := e.Group("/v1/auth")
	g.POST("/login", a.Login, rl)
	// Refresh rotates the pair; refresh-access reuses the refresh token
	// and only reissues the short-lived access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(verifier))
	auth.POST("/auth/logout", a.Logout)
	auth.POST("/logout-all", a.LogoutAll)
	auth.GET("/me", a.Me)
	auth.GET("/sessions", a.Sessions)
	auth.PUT("/profile", a.UpdateProfile)
	auth.POST("/password", a.ChangePassword)
}

// RegisterAdmin registers the admin-only routes.  Every route requires a
// verified session resolving to a user whose role is admin or above;
// rejected attempts are recorded in the audit trail.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, verifier middleware.TokenVerifier, sec *security.Manager) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(verifier))
	g.Use(middleware.RequireRole(model.RoleAdmin, sec))

	g.POST("/users", h.CreateUser)
	g.GET("/users", h.ListUsers)
	g.GET("/profiles/:id", h.GetProfile)
	g.POST("/profiles/:id", h.CreateProfile)
	g.DELETE("/profiles/:id", h.DeleteProfile)
	g.PUT("/obd2-permissions/:id", h.UpdateOBD2Permissions)
	g.PUT("/system-access/:id", h.UpdateSystemAccess)
	g.GET("/events", h.Events)
}
