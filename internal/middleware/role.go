package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rezonate/auth-service/internal/model"
	"github.com/rezonate/auth-service/internal/security"
)

// RequireRole returns a middleware that enforces a minimum privilege
// level on the authenticated user.  Roles are strictly ordered, so a
// single floor covers "admin-or-above" style checks.  It assumes JWTAuth
// already stored the role in the context; a missing or unknown role is
// rejected with 403.  Rejections of authenticated users are recorded as
// permission_denied audit events when sec is non-nil.
func RequireRole(minimum model.Role, sec *security.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("role")
			roleStr, ok := v.(string)
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			role, ok := model.ParseRole(roleStr)
			if !ok || !role.AtLeast(minimum) {
				if sec != nil {
					uid, _ := c.Get("user_id").(string)
					sec.LogEvent(c.Request().Context(), model.EventPermissionDenied, uid, map[string]string{
						"path": c.Path(),
						"role": roleStr,
					})
				}
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
