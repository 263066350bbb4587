package profile

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonate/auth-service/internal/model"
	"github.com/rezonate/auth-service/internal/security"
)

type memStore struct {
	profiles map[string]*model.AdminProfile
}

func newMemStore() *memStore { return &memStore{profiles: map[string]*model.AdminProfile{}} }

func (s *memStore) Create(_ context.Context, p *model.AdminProfile) error {
	cp := *p
	s.profiles[p.UserID] = &cp
	return nil
}

func (s *memStore) Get(_ context.Context, userID string) (model.AdminProfile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return model.AdminProfile{}, sql.ErrNoRows
	}
	cp := *p
	cp.OBD2Permissions = clone(p.OBD2Permissions)
	cp.SystemAccess = clone(p.SystemAccess)
	return cp, nil
}

func (s *memStore) UpdateOBD2(_ context.Context, userID string, perms map[string]bool, updatedBy string) error {
	p, ok := s.profiles[userID]
	if !ok {
		return sql.ErrNoRows
	}
	p.OBD2Permissions, p.UpdatedBy = clone(perms), updatedBy
	return nil
}

func (s *memStore) UpdateSystemAccess(_ context.Context, userID string, access map[string]bool, updatedBy string) error {
	p, ok := s.profiles[userID]
	if !ok {
		return sql.ErrNoRows
	}
	p.SystemAccess, p.UpdatedBy = clone(access), updatedBy
	return nil
}

func (s *memStore) UpdateLevel(_ context.Context, userID string, level int, updatedBy string) error {
	p, ok := s.profiles[userID]
	if !ok {
		return sql.ErrNoRows
	}
	p.AdminLevel, p.UpdatedBy = level, updatedBy
	return nil
}

func (s *memStore) Delete(_ context.Context, userID string) error {
	if _, ok := s.profiles[userID]; !ok {
		return sql.ErrNoRows
	}
	delete(s.profiles, userID)
	return nil
}

func clone(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type memUsers struct{ users map[string]model.User }

func (s *memUsers) GetByID(_ context.Context, id string) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func newFixture() (*Manager, *memStore, *security.Manager) {
	store := newMemStore()
	users := &memUsers{users: map[string]model.User{
		"admin-1": {ID: "admin-1", Role: model.RoleAdmin, IsActive: true},
		"user-1":  {ID: "user-1", Role: model.RoleUser, IsActive: true},
	}}
	sec := security.New(zerolog.Nop(), 100, nil)
	return NewManager(store, users, sec), store, sec
}

func seedProfile(t *testing.T, m *Manager) model.AdminProfile {
	t.Helper()
	p, err := m.Create(context.Background(), "admin-1", 2, "actor-1")
	require.NoError(t, err)
	return p
}

func TestCreateValidation(t *testing.T) {
	m, _, sec := newFixture()
	ctx := context.Background()

	_, err := m.Create(ctx, "admin-1", 5, "actor-1")
	assert.ErrorIs(t, err, ErrInvalidLevel)

	_, err = m.Create(ctx, "user-1", 1, "actor-1")
	assert.ErrorIs(t, err, ErrNotAdmin)

	p, err := m.Create(ctx, "admin-1", 2, "actor-1")
	require.NoError(t, err)
	assert.True(t, p.OBD2Permissions[model.PermReadData])
	assert.False(t, p.OBD2Permissions[model.PermECUProgramming])
	assert.Len(t, sec.Events("admin-1", model.EventAdminProfileCreated, 0), 1)
}

func TestUpdateOBD2RejectsUnknownKey(t *testing.T) {
	m, _, _ := newFixture()
	seedProfile(t, m)

	_, err := m.UpdateOBD2Permissions(context.Background(), "admin-1",
		map[string]bool{"launch_missiles": true}, "actor-1")
	assert.ErrorIs(t, err, ErrUnknownPermission)
}

func TestUpdateMissingProfile(t *testing.T) {
	m, _, _ := newFixture()

	_, err := m.UpdateOBD2Permissions(context.Background(), "admin-1",
		map[string]bool{model.PermWriteData: true}, "actor-1")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestGrantBidirectionalSetsPair(t *testing.T) {
	m, store, sec := newFixture()
	seedProfile(t, m)
	ctx := context.Background()

	p, err := m.GrantBidirectionalAccess(ctx, "admin-1", "actor-1")
	require.NoError(t, err)
	assert.True(t, p.OBD2Permissions[model.PermBidirectional])
	assert.True(t, p.OBD2Permissions[model.PermWriteData])
	assert.Equal(t, "actor-1", store.profiles["admin-1"].UpdatedBy)

	events := sec.Events("admin-1", model.EventPermissionsUpdated, 0)
	require.NotEmpty(t, events)
	assert.Equal(t, "actor-1", events[0].Details["updated_by"])
}

func TestRevokeBidirectionalClearsPair(t *testing.T) {
	m, _, _ := newFixture()
	seedProfile(t, m)
	ctx := context.Background()

	// Arm everything first so the revoke visibly clears only its pair.
	_, err := m.UpdateOBD2Permissions(ctx, "admin-1", map[string]bool{
		model.PermBidirectional:  true,
		model.PermWriteData:      true,
		model.PermECUProgramming: true,
	}, "actor-1")
	require.NoError(t, err)

	p, err := m.RevokeBidirectionalAccess(ctx, "admin-1", "actor-1")
	require.NoError(t, err)
	assert.False(t, p.OBD2Permissions[model.PermBidirectional])
	assert.False(t, p.OBD2Permissions[model.PermECUProgramming])
	// write_data survives a revoke; only the bidirectional pair is cleared.
	assert.True(t, p.OBD2Permissions[model.PermWriteData])
}

func TestUpdateSystemAccessAndLevel(t *testing.T) {
	m, store, _ := newFixture()
	seedProfile(t, m)
	ctx := context.Background()

	p, err := m.UpdateSystemAccess(ctx, "admin-1",
		map[string]bool{model.AccessAuditLogs: true}, "actor-1")
	require.NoError(t, err)
	assert.True(t, p.SystemAccess[model.AccessAuditLogs])
	assert.False(t, p.SystemAccess[model.AccessFirmwareUpdate])

	_, err = m.UpdateSystemAccess(ctx, "admin-1",
		map[string]bool{"root_shell": true}, "actor-1")
	assert.ErrorIs(t, err, ErrUnknownPermission)

	assert.ErrorIs(t, m.UpdateAdminLevel(ctx, "admin-1", 0, "actor-1"), ErrInvalidLevel)
	require.NoError(t, m.UpdateAdminLevel(ctx, "admin-1", 3, "actor-1"))
	assert.Equal(t, 3, store.profiles["admin-1"].AdminLevel)
}

func TestDelete(t *testing.T) {
	m, _, sec := newFixture()
	seedProfile(t, m)
	ctx := context.Background()

	require.NoError(t, m.Delete(ctx, "admin-1", "actor-1"))
	assert.ErrorIs(t, m.Delete(ctx, "admin-1", "actor-1"), ErrProfileNotFound)
	assert.Len(t, sec.Events("admin-1", model.EventAdminProfileDeleted, 0), 1)
}
