package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonate/auth-service/internal/auth"
	"github.com/rezonate/auth-service/internal/model"
	"github.com/rezonate/auth-service/internal/security"
)

type stubVerifier struct {
	user model.User
	err  error
	seen string
}

func (v *stubVerifier) VerifyToken(_ context.Context, raw string) (model.User, error) {
	v.seen = raw
	if v.err != nil {
		return model.User{}, v.err
	}
	return v.user, nil
}

func doRequest(mw echo.MiddlewareFunc, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = mw(next)(c)
	return rec
}

func TestJWTAuthInjectsIdentity(t *testing.T) {
	v := &stubVerifier{user: model.User{ID: "u-1", Role: model.RoleTechnician, IsActive: true}}

	var gotID, gotRole, gotToken string
	rec := doRequest(JWTAuth(v), "Bearer raw-token", func(c echo.Context) error {
		gotID, _ = c.Get("user_id").(string)
		gotRole, _ = c.Get("role").(string)
		gotToken, _ = c.Get("token").(string)
		return c.NoContent(http.StatusOK)
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "raw-token", v.seen)
	assert.Equal(t, "u-1", gotID)
	assert.Equal(t, "technician", gotRole)
	assert.Equal(t, "raw-token", gotToken)
}

func TestJWTAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	v := &stubVerifier{user: model.User{ID: "u-1", Role: model.RoleUser}}
	next := func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	}

	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "raw-token"} {
		rec := doRequest(JWTAuth(v), header, next)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header=%q", header)
	}
}

func TestJWTAuthRejectsFailedVerification(t *testing.T) {
	v := &stubVerifier{err: auth.ErrInvalidToken}
	rec := doRequest(JWTAuth(v), "Bearer stale-token", func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleFloor(t *testing.T) {
	sec := security.New(zerolog.Nop(), 10, nil)
	mw := RequireRole(model.RoleAdmin, sec)

	run := func(role string) *httptest.ResponseRecorder {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set("user_id", "u-1")
			c.Set("role", role)
		}
		_ = mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
		return rec
	}

	assert.Equal(t, http.StatusOK, run("admin").Code)
	assert.Equal(t, http.StatusOK, run("super_admin").Code)
	assert.Equal(t, http.StatusForbidden, run("technician").Code)
	assert.Equal(t, http.StatusForbidden, run("made_up_role").Code)
	assert.Equal(t, http.StatusForbidden, run("").Code)

	// Each authenticated rejection lands in the audit trail.
	assert.Len(t, sec.Events("u-1", model.EventPermissionDenied, 0), 2)
}
