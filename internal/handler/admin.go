package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rezonate/auth-service/internal/auth"
	"github.com/rezonate/auth-service/internal/model"
	"github.com/rezonate/auth-service/internal/profile"
	"github.com/rezonate/auth-service/internal/repository"
	"github.com/rezonate/auth-service/internal/security"
)

// AdminHandler bundles dependencies for admin-only endpoints.
type AdminHandler struct {
	Auth     *auth.Manager
	Profiles *profile.Manager
	Sec      *security.Manager
}

func NewAdminHandler(a *auth.Manager, p *profile.Manager, s *security.Manager) *AdminHandler {
	if a == nil || p == nil || s == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Auth: a, Profiles: p, Sec: s}
}

// ----- DTOs -----

type createUserReq struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	AdminLevel int    `json:"admin_level"`
}
type obd2Req struct {
	Permissions map[string]bool `json:"permissions"`
	// Optional convenience action: "grant_bidirectional" or
	// "revoke_bidirectional".  When set, Permissions is ignored.
	Action string `json:"action"`
}
type systemAccessReq struct {
	Access     map[string]bool `json:"access"`
	AdminLevel int             `json:"admin_level"`
}
type createProfileReq struct {
	AdminLevel int `json:"admin_level"`
}

type profilePart struct {
	UserID          string          `json:"user_id"`
	AdminLevel      int             `json:"admin_level"`
	OBD2Permissions map[string]bool `json:"obd2_permissions"`
	SystemAccess    map[string]bool `json:"system_access"`
	UpdatedBy       string          `json:"updated_by,omitempty"`
}

func toProfilePart(p model.AdminProfile) profilePart {
	return profilePart{
		UserID:          p.UserID,
		AdminLevel:      p.AdminLevel,
		OBD2Permissions: p.OBD2Permissions,
		SystemAccess:    p.SystemAccess,
		UpdatedBy:       p.UpdatedBy,
	}
}

func actorID(c echo.Context) string {
	uid, _ := c.Get("user_id").(string)
	return uid
}

// CreateUser: register an account, attaching an admin profile when the
// role is admin or above.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/username/password required"})
	}
	role, ok := model.ParseRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}
	// Only a super_admin may mint another super_admin.
	if role == model.RoleSuperAdmin {
		if actor, _ := c.Get("role").(string); actor != string(model.RoleSuperAdmin) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Auth.CreateUser(ctx, req.Email, req.Username, req.Password, role, req.AdminLevel, actorID(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, toUserPart(u))
}

// ListUsers: every account, newest first.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Auth.ListUsers(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// GetProfile: fetch a user's admin profile.
func (h *AdminHandler) GetProfile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Profiles.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toProfilePart(p))
}

// UpdateOBD2Permissions: mutate the diagnostic permission map, or apply
// one of the paired grant/revoke convenience actions.
func (h *AdminHandler) UpdateOBD2Permissions(c echo.Context) error {
	var req obd2Req
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	userID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		p   model.AdminProfile
		err error
	)
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "grant_bidirectional":
		p, err = h.Profiles.GrantBidirectionalAccess(ctx, userID, actorID(c))
	case "revoke_bidirectional":
		p, err = h.Profiles.RevokeBidirectionalAccess(ctx, userID, actorID(c))
	case "":
		if len(req.Permissions) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "permissions or action required"})
		}
		p, err = h.Profiles.UpdateOBD2Permissions(ctx, userID, req.Permissions, actorID(c))
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown action"})
	}
	if err != nil {
		return h.profileError(c, err)
	}
	return c.JSON(http.StatusOK, toProfilePart(p))
}

// UpdateSystemAccess: mutate the platform access map and, optionally, the
// admin level in the same request.
func (h *AdminHandler) UpdateSystemAccess(c echo.Context) error {
	var req systemAccessReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Access) == 0 && req.AdminLevel == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "access or admin_level required"})
	}
	userID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.AdminLevel != 0 {
		if err := h.Profiles.UpdateAdminLevel(ctx, userID, req.AdminLevel, actorID(c)); err != nil {
			return h.profileError(c, err)
		}
	}
	if len(req.Access) > 0 {
		p, err := h.Profiles.UpdateSystemAccess(ctx, userID, req.Access, actorID(c))
		if err != nil {
			return h.profileError(c, err)
		}
		return c.JSON(http.StatusOK, toProfilePart(p))
	}
	p, err := h.Profiles.Get(ctx, userID)
	if err != nil {
		return h.profileError(c, err)
	}
	return c.JSON(http.StatusOK, toProfilePart(p))
}

// CreateProfile: attach an admin profile to an existing privileged user.
func (h *AdminHandler) CreateProfile(c echo.Context) error {
	var req createProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Profiles.Create(ctx, c.Param("id"), req.AdminLevel, actorID(c))
	if err != nil {
		switch {
		case errors.Is(err, profile.ErrInvalidLevel), errors.Is(err, profile.ErrNotAdmin):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrProfileExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "profile already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create profile failed"})
	}
	return c.JSON(http.StatusCreated, toProfilePart(p))
}

// DeleteProfile: remove a user's admin profile.
func (h *AdminHandler) DeleteProfile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Profiles.Delete(ctx, c.Param("id"), actorID(c)); err != nil {
		return h.profileError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Events: read the in-memory audit ring with optional filters.
func (h *AdminHandler) Events(c echo.Context) error {
	limit := 100
	if s := c.QueryParam("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	events := h.Sec.Events(c.QueryParam("user_id"), c.QueryParam("type"), limit)
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

func (h *AdminHandler) profileError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, profile.ErrProfileNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
	case errors.Is(err, profile.ErrUnknownPermission), errors.Is(err, profile.ErrInvalidLevel):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
}
