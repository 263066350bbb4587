package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleOrdering(t *testing.T) {
	ordered := []Role{RoleGuest, RoleUser, RoleTechnician, RoleAdmin, RoleSuperAdmin}
	for i := 1; i < len(ordered); i++ {
		assert.True(t, ordered[i].AtLeast(ordered[i-1]), "%s should outrank %s", ordered[i], ordered[i-1])
		assert.False(t, ordered[i-1].AtLeast(ordered[i]), "%s should not outrank %s", ordered[i-1], ordered[i])
	}

	assert.True(t, RoleAdmin.IsAdmin())
	assert.True(t, RoleSuperAdmin.IsAdmin())
	assert.False(t, RoleTechnician.IsAdmin())

	// Unknown roles satisfy nothing, not even guest.
	assert.False(t, Role("root").AtLeast(RoleGuest))
	assert.Equal(t, -1, Role("root").Level())
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("technician")
	require.True(t, ok)
	assert.Equal(t, RoleTechnician, r)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}

func TestDefaultPermissionMaps(t *testing.T) {
	obd2 := DefaultOBD2Permissions()
	require.Len(t, obd2, 5)
	assert.True(t, obd2[PermReadData])
	for _, k := range []string{PermClearCodes, PermWriteData, PermBidirectional, PermECUProgramming} {
		assert.False(t, obd2[k], k)
	}
	for k := range obd2 {
		assert.True(t, ValidOBD2Key(k), k)
	}

	access := DefaultSystemAccess()
	require.Len(t, access, 4)
	for k, v := range access {
		assert.False(t, v, k)
		assert.True(t, ValidSystemAccessKey(k), k)
	}

	assert.False(t, ValidOBD2Key(AccessAuditLogs))
	assert.False(t, ValidSystemAccessKey(PermReadData))
}

func TestValidAdminLevel(t *testing.T) {
	assert.False(t, ValidAdminLevel(0))
	assert.True(t, ValidAdminLevel(1))
	assert.True(t, ValidAdminLevel(3))
	assert.False(t, ValidAdminLevel(4))
}

func TestSessionTokenValidity(t *testing.T) {
	live := SessionToken{IsActive: true, ExpiresAt: time.Now().Add(time.Hour)}
	assert.True(t, live.IsValid())

	expired := SessionToken{IsActive: true, ExpiresAt: time.Now().Add(-time.Minute)}
	assert.True(t, expired.IsExpired())
	assert.False(t, expired.IsValid())

	revoked := SessionToken{IsActive: false, ExpiresAt: time.Now().Add(time.Hour)}
	assert.False(t, revoked.IsValid())
}

func TestSeverityFor(t *testing.T) {
	cases := map[string]string{
		EventFailedLogin:         SeverityHigh,
		EventAccountLocked:       SeverityHigh,
		EventPermissionDenied:    SeverityHigh,
		EventTokenInvalid:        SeverityHigh,
		EventAdminProfileDeleted: SeverityHigh,
		EventPasswordChanged:     SeverityMedium,
		EventPermissionsUpdated:  SeverityMedium,
		EventSessionRevoked:      SeverityMedium,
		EventUserCreated:         SeverityMedium,
		EventAdminProfileCreated: SeverityMedium,
		EventSuccessfulLogin:     SeverityLow,
		EventLogout:              SeverityLow,
		EventTokenExpired:        SeverityLow,
		"never_seen_before":      SeverityLow,
	}
	for eventType, want := range cases {
		assert.Equal(t, want, SeverityFor(eventType), eventType)
	}
}
