// Package auth implements credential verification, token issuance and
// session lifecycle on top of the persistence layer.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rezonate/auth-service/internal/config"
	"github.com/rezonate/auth-service/internal/model"
	"github.com/rezonate/auth-service/internal/repository"
	"github.com/rezonate/auth-service/internal/security"
	"github.com/rezonate/auth-service/internal/utils"
	"github.com/rezonate/auth-service/pkg/log"
)

// UserStore is the slice of the user repository the manager depends on.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByUsernameOrEmail(ctx context.Context, ident string) (model.User, error)
	UpdateLastLogin(ctx context.Context, id string, t time.Time) error
	UpdateProfile(ctx context.Context, id, email, username string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	CountByRole(ctx context.Context, role model.Role) (int, error)
	List(ctx context.Context) ([]model.User, error)
}

// SessionStore is the slice of the session repository the manager depends on.
type SessionStore interface {
	Insert(ctx context.Context, s *model.SessionToken) error
	GetByTokenHash(ctx context.Context, hash string) (model.SessionToken, error)
	GetByRefreshHash(ctx context.Context, hash string) (model.SessionToken, error)
	Rotate(ctx context.Context, id, tokenHash, refreshHash string, expiresAt time.Time) error
	Touch(ctx context.Context, id string, t time.Time) error
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
	ListActiveForUser(ctx context.Context, userID string) ([]model.SessionToken, error)
}

// ProfileStore creates the admin profile that accompanies privileged
// accounts.
type ProfileStore interface {
	Create(ctx context.Context, p *model.AdminProfile) error
}

// DeviceInfo carries the client metadata recorded on a session row.
type DeviceInfo struct {
	Device    string
	IPAddress string
	UserAgent string
}

// Manager authenticates credentials, mints and rotates token pairs and
// owns the session rows backing them.
type Manager struct {
	cfg      config.Config
	users    UserStore
	sessions SessionStore
	profiles ProfileStore
	sec      *security.Manager
	logger   log.Logger
}

func NewManager(cfg config.Config, users UserStore, sessions SessionStore, profiles ProfileStore, sec *security.Manager, logger log.Logger) *Manager {
	if users == nil || sessions == nil || profiles == nil || sec == nil {
		panic("nil dependency passed to auth.NewManager")
	}
	return &Manager{cfg: cfg, users: users, sessions: sessions, profiles: profiles, sec: sec, logger: logger}
}

// Authenticate verifies credentials and opens a session.  The identifier
// may be a username or an email.  Absent, disabled and wrong-password
// cases all collapse to ErrInvalidCredentials so callers leak nothing;
// the audit trail records the distinction.
func (m *Manager) Authenticate(ctx context.Context, ident, password string, dev DeviceInfo) (utils.AccessToken, utils.RefreshToken, model.User, error) {
	u, err := m.users.GetByUsernameOrEmail(ctx, ident)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, ErrInvalidCredentials
		}
		return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, err
	}
	if !u.IsActive {
		m.sec.LogEvent(ctx, model.EventAccountLocked, u.ID, map[string]string{"ip": dev.IPAddress})
		return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, ErrInvalidCredentials
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		m.sec.LogEvent(ctx, model.EventFailedLogin, u.ID, map[string]string{"ip": dev.IPAddress})
		return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := m.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, err
	}
	u.LastLogin = &now

	access, refresh, err := m.issuePair(u)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, err
	}
	session := &model.SessionToken{
		ID:               uuid.NewString(),
		UserID:           u.ID,
		TokenHash:        utils.HashTokenRaw(access.Token),
		RefreshTokenHash: utils.HashTokenRaw(refresh.Raw),
		DeviceInfo:       dev.Device,
		IPAddress:        dev.IPAddress,
		UserAgent:        dev.UserAgent,
		ExpiresAt:        refresh.Exp,
		LastActivity:     now,
		IsActive:         true,
	}
	if err := m.sessions.Insert(ctx, session); err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, err
	}

	m.sec.LogEvent(ctx, model.EventSuccessfulLogin, u.ID, map[string]string{
		"ip":     dev.IPAddress,
		"device": dev.Device,
	})
	return access, refresh, u, nil
}

// Refresh rotates a token pair.  The session row is rewritten in place so
// the stale refresh token stops resolving immediately.  An expired
// session is revoked as a side effect before the error is returned.
func (m *Manager) Refresh(ctx context.Context, refreshRaw string) (utils.AccessToken, utils.RefreshToken, model.User, error) {
	s, err := m.sessions.GetByRefreshHash(ctx, utils.HashTokenRaw(refreshRaw))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, ErrInvalidToken
		}
		return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, err
	}
	if !s.IsActive {
		return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, ErrInvalidToken
	}
	if s.IsExpired() {
		_ = m.sessions.Revoke(ctx, s.ID)
		m.sec.LogEvent(ctx, model.EventTokenExpired, s.UserID, nil)
		return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, ErrInvalidToken
	}

	u, err := m.users.GetByID(ctx, s.UserID)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, err
	}
	if !u.IsActive {
		return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, ErrInvalidToken
	}

	access, refresh, err := m.issuePair(u)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, err
	}
	if err := m.sessions.Rotate(ctx, s.ID,
		utils.HashTokenRaw(access.Token), utils.HashTokenRaw(refresh.Raw), refresh.Exp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, ErrInvalidToken
		}
		return utils.AccessToken{}, utils.RefreshToken{}, model.User{}, err
	}
	return access, refresh, u, nil
}

// RefreshAccess mints a fresh access token against an existing session
// without rotating the refresh token.  The new access hash replaces the
// old one on the session row so verification keeps matching.
func (m *Manager) RefreshAccess(ctx context.Context, refreshRaw string) (utils.AccessToken, error) {
	s, err := m.sessions.GetByRefreshHash(ctx, utils.HashTokenRaw(refreshRaw))
	if err != nil || !s.IsValid() {
		return utils.AccessToken{}, ErrInvalidToken
	}
	u, err := m.users.GetByID(ctx, s.UserID)
	if err != nil || !u.IsActive {
		return utils.AccessToken{}, ErrInvalidToken
	}
	access, err := utils.NewAccessToken(m.cfg.JWTSecret, u.ID, string(u.Role), m.cfg.AccessTTLMin)
	if err != nil {
		return utils.AccessToken{}, err
	}
	if err := m.sessions.Rotate(ctx, s.ID,
		utils.HashTokenRaw(access.Token), s.RefreshTokenHash, s.ExpiresAt); err != nil {
		return utils.AccessToken{}, ErrInvalidToken
	}
	return access, nil
}

// VerifyToken resolves an access token to its user.  It fails closed on
// any signature or expiry error, then cross-checks that a live, active,
// non-expired session row exists for the token hash and that the account
// is still enabled.  Success touches last_activity.
func (m *Manager) VerifyToken(ctx context.Context, raw string) (model.User, error) {
	claims, err := utils.ParseAccessToken(m.cfg.JWTSecret, raw)
	if err != nil {
		return model.User{}, ErrInvalidToken
	}
	s, err := m.sessions.GetByTokenHash(ctx, utils.HashTokenRaw(raw))
	if err != nil {
		return model.User{}, ErrInvalidToken
	}
	if !s.IsValid() || s.UserID != claims.UserID {
		return model.User{}, ErrInvalidToken
	}
	u, err := m.users.GetByID(ctx, s.UserID)
	if err != nil || !u.IsActive {
		return model.User{}, ErrInvalidToken
	}
	_ = m.sessions.Touch(ctx, s.ID, time.Now().UTC())
	return u, nil
}

// Logout revokes the session backing an access token.  The boolean result
// reports whether a session was found and revoked.
func (m *Manager) Logout(ctx context.Context, raw string) (bool, error) {
	s, err := m.sessions.GetByTokenHash(ctx, utils.HashTokenRaw(raw))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if err := m.sessions.Revoke(ctx, s.ID); err != nil {
		return false, err
	}
	m.sec.LogEvent(ctx, model.EventLogout, s.UserID, nil)
	return true, nil
}

// LogoutAll revokes every active session of a user and returns the count.
func (m *Manager) LogoutAll(ctx context.Context, userID string) (int64, error) {
	n, err := m.sessions.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	m.sec.LogEvent(ctx, model.EventSessionRevoked, userID, map[string]string{
		"revoked": strconv.FormatInt(n, 10),
	})
	return n, nil
}

// UserSessions lists the user's valid sessions.
func (m *Manager) UserSessions(ctx context.Context, userID string) ([]model.SessionToken, error) {
	return m.sessions.ListActiveForUser(ctx, userID)
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every open session so stolen tokens die with the old password.
func (m *Manager) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, oldPassword) {
		m.sec.LogEvent(ctx, model.EventFailedLogin, userID, map[string]string{"context": "password_change"})
		return ErrInvalidCredentials
	}
	hash, err := utils.HashPassword(newPassword, m.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := m.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}
	if _, err := m.sessions.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}
	m.sec.LogEvent(ctx, model.EventPasswordChanged, userID, nil)
	return nil
}

// CreateUser registers an account on behalf of an administrator.  Roles
// admin and above get an AdminProfile with default permission maps; the
// adminLevel parameter is only consulted for those roles.
func (m *Manager) CreateUser(ctx context.Context, email, username, password string, role model.Role, adminLevel int, createdBy string) (model.User, error) {
	if !role.Valid() {
		return model.User{}, errInvalidRole(string(role))
	}
	hash, err := utils.HashPassword(password, m.cfg.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     strings.ToLower(strings.TrimSpace(username)),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := m.users.Create(ctx, u); err != nil {
		return model.User{}, err
	}
	if role.IsAdmin() {
		if !model.ValidAdminLevel(adminLevel) {
			adminLevel = 1
		}
		p := &model.AdminProfile{
			UserID:          u.ID,
			AdminLevel:      adminLevel,
			OBD2Permissions: model.DefaultOBD2Permissions(),
			SystemAccess:    model.DefaultSystemAccess(),
			UpdatedBy:       createdBy,
		}
		if err := m.profiles.Create(ctx, p); err != nil && !errors.Is(err, repository.ErrProfileExists) {
			return model.User{}, err
		}
	}
	m.sec.LogEvent(ctx, model.EventUserCreated, u.ID, map[string]string{
		"role":       string(role),
		"created_by": createdBy,
	})
	return *u, nil
}

// UpdateProfile changes the caller's own email and username and returns
// the refreshed record.
func (m *Manager) UpdateProfile(ctx context.Context, userID, email, username string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.ToLower(strings.TrimSpace(username))
	if err := m.users.UpdateProfile(ctx, userID, email, username); err != nil {
		return model.User{}, err
	}
	return m.users.GetByID(ctx, userID)
}

// ListUsers returns every account, newest first.
func (m *Manager) ListUsers(ctx context.Context) ([]model.User, error) {
	return m.users.List(ctx)
}

func (m *Manager) issuePair(u model.User) (utils.AccessToken, utils.RefreshToken, error) {
	access, err := utils.NewAccessToken(m.cfg.JWTSecret, u.ID, string(u.Role), m.cfg.AccessTTLMin)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	refresh, err := utils.NewRefreshToken(m.cfg.RefreshTTLDays)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	return access, refresh, nil
}

func errInvalidRole(role string) error {
	return &InvalidRoleError{Role: strings.TrimSpace(role)}
}

// InvalidRoleError reports an unknown role name on user creation.
type InvalidRoleError struct{ Role string }

func (e *InvalidRoleError) Error() string { return "invalid role: " + e.Role }
