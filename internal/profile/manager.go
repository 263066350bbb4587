// Package profile mutates the admin permission maps attached to
// privileged accounts.
package profile

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rezonate/auth-service/internal/model"
	"github.com/rezonate/auth-service/internal/security"
)

// ErrProfileNotFound is returned when the target user has no admin
// profile.  Handlers translate it to HTTP 404.
var ErrProfileNotFound = errors.New("admin profile not found")

// ErrUnknownPermission is returned when a request names a key outside
// the fixed permission sets.
var ErrUnknownPermission = errors.New("unknown permission key")

// ErrInvalidLevel is returned when an admin level falls outside 1..3.
var ErrInvalidLevel = errors.New("admin level must be between 1 and 3")

// ErrNotAdmin is returned when creating a profile for an account below
// the admin role.
var ErrNotAdmin = errors.New("user role is below admin")

// Store is the slice of the profile repository the manager depends on.
type Store interface {
	Create(ctx context.Context, p *model.AdminProfile) error
	Get(ctx context.Context, userID string) (model.AdminProfile, error)
	UpdateOBD2(ctx context.Context, userID string, perms map[string]bool, updatedBy string) error
	UpdateSystemAccess(ctx context.Context, userID string, access map[string]bool, updatedBy string) error
	UpdateLevel(ctx context.Context, userID string, level int, updatedBy string) error
	Delete(ctx context.Context, userID string) error
}

// UserStore resolves accounts so profile creation can check the role.
type UserStore interface {
	GetByID(ctx context.Context, id string) (model.User, error)
}

// Manager owns admin profile mutations.  Every change is recorded with
// the acting user id in the audit trail.
type Manager struct {
	profiles Store
	users    UserStore
	sec      *security.Manager
}

func NewManager(profiles Store, users UserStore, sec *security.Manager) *Manager {
	if profiles == nil || users == nil || sec == nil {
		panic("nil dependency passed to profile.NewManager")
	}
	return &Manager{profiles: profiles, users: users, sec: sec}
}

// Get fetches a user's admin profile.
func (m *Manager) Get(ctx context.Context, userID string) (model.AdminProfile, error) {
	p, err := m.profiles.Get(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AdminProfile{}, ErrProfileNotFound
	}
	return p, err
}

// Create attaches a profile with default permission maps to an account
// holding role admin or above.
func (m *Manager) Create(ctx context.Context, userID string, adminLevel int, updatedBy string) (model.AdminProfile, error) {
	if !model.ValidAdminLevel(adminLevel) {
		return model.AdminProfile{}, ErrInvalidLevel
	}
	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return model.AdminProfile{}, err
	}
	if !u.Role.IsAdmin() {
		return model.AdminProfile{}, ErrNotAdmin
	}
	p := &model.AdminProfile{
		UserID:          userID,
		AdminLevel:      adminLevel,
		OBD2Permissions: model.DefaultOBD2Permissions(),
		SystemAccess:    model.DefaultSystemAccess(),
		UpdatedBy:       updatedBy,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := m.profiles.Create(ctx, p); err != nil {
		return model.AdminProfile{}, err
	}
	m.sec.LogEvent(ctx, model.EventAdminProfileCreated, userID, map[string]string{"updated_by": updatedBy})
	return *p, nil
}

// Delete removes a user's admin profile explicitly.
func (m *Manager) Delete(ctx context.Context, userID, updatedBy string) error {
	if err := m.profiles.Delete(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProfileNotFound
		}
		return err
	}
	m.sec.LogEvent(ctx, model.EventAdminProfileDeleted, userID, map[string]string{"updated_by": updatedBy})
	return nil
}

// UpdateOBD2Permissions applies the given flag changes on top of the
// stored map.  Keys outside the fixed OBD2 set are rejected before
// anything is written.
func (m *Manager) UpdateOBD2Permissions(ctx context.Context, userID string, changes map[string]bool, updatedBy string) (model.AdminProfile, error) {
	for k := range changes {
		if !model.ValidOBD2Key(k) {
			return model.AdminProfile{}, ErrUnknownPermission
		}
	}
	p, err := m.Get(ctx, userID)
	if err != nil {
		return model.AdminProfile{}, err
	}
	for k, v := range changes {
		p.OBD2Permissions[k] = v
	}
	if err := m.profiles.UpdateOBD2(ctx, userID, p.OBD2Permissions, updatedBy); err != nil {
		return model.AdminProfile{}, err
	}
	p.UpdatedBy = updatedBy
	m.logPermissionUpdate(ctx, userID, "obd2_permissions", updatedBy)
	return p, nil
}

// UpdateSystemAccess applies flag changes to the system access map with
// the same fixed-set validation.
func (m *Manager) UpdateSystemAccess(ctx context.Context, userID string, changes map[string]bool, updatedBy string) (model.AdminProfile, error) {
	for k := range changes {
		if !model.ValidSystemAccessKey(k) {
			return model.AdminProfile{}, ErrUnknownPermission
		}
	}
	p, err := m.Get(ctx, userID)
	if err != nil {
		return model.AdminProfile{}, err
	}
	for k, v := range changes {
		p.SystemAccess[k] = v
	}
	if err := m.profiles.UpdateSystemAccess(ctx, userID, p.SystemAccess, updatedBy); err != nil {
		return model.AdminProfile{}, err
	}
	p.UpdatedBy = updatedBy
	m.logPermissionUpdate(ctx, userID, "system_access", updatedBy)
	return p, nil
}

// UpdateAdminLevel changes the admin tier within the accepted range.
func (m *Manager) UpdateAdminLevel(ctx context.Context, userID string, level int, updatedBy string) error {
	if !model.ValidAdminLevel(level) {
		return ErrInvalidLevel
	}
	if err := m.profiles.UpdateLevel(ctx, userID, level, updatedBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProfileNotFound
		}
		return err
	}
	m.logPermissionUpdate(ctx, userID, "admin_level", updatedBy)
	return nil
}

// GrantBidirectionalAccess enables live actuator control.  Bidirectional
// tests require write access to the bus, so the two flags always move
// together.
func (m *Manager) GrantBidirectionalAccess(ctx context.Context, userID, updatedBy string) (model.AdminProfile, error) {
	return m.UpdateOBD2Permissions(ctx, userID, map[string]bool{
		model.PermBidirectional: true,
		model.PermWriteData:     true,
	}, updatedBy)
}

// RevokeBidirectionalAccess disables live actuator control.  ECU
// programming rides on the bidirectional channel, so revoking clears it
// as well.
func (m *Manager) RevokeBidirectionalAccess(ctx context.Context, userID, updatedBy string) (model.AdminProfile, error) {
	return m.UpdateOBD2Permissions(ctx, userID, map[string]bool{
		model.PermBidirectional:  false,
		model.PermECUProgramming: false,
	}, updatedBy)
}

func (m *Manager) logPermissionUpdate(ctx context.Context, userID, field, updatedBy string) {
	m.sec.LogEvent(ctx, model.EventPermissionsUpdated, userID, map[string]string{
		"field":      field,
		"updated_by": updatedBy,
	})
}
