package model

import "time"

// OBD2 permission keys.  The set is fixed: a profile's obd2_permissions
// map always contains exactly these keys and no others.
const (
	PermReadData       = "read_data"
	PermClearCodes     = "clear_codes"
	PermWriteData      = "write_data"
	PermBidirectional  = "bidirectional_access"
	PermECUProgramming = "ecu_programming"
)

// System access keys.  Same fixed-set rule as the OBD2 permissions.
const (
	AccessUserManagement = "user_management"
	AccessSystemConfig   = "system_config"
	AccessAuditLogs      = "audit_logs"
	AccessFirmwareUpdate = "firmware_update"
)

var obd2Keys = map[string]bool{
	PermReadData:       true,
	PermClearCodes:     true,
	PermWriteData:      true,
	PermBidirectional:  true,
	PermECUProgramming: true,
}

var systemAccessKeys = map[string]bool{
	AccessUserManagement: true,
	AccessSystemConfig:   true,
	AccessAuditLogs:      true,
	AccessFirmwareUpdate: true,
}

// ValidOBD2Key reports whether key names one of the enumerated OBD2
// permissions.
func ValidOBD2Key(key string) bool { return obd2Keys[key] }

// ValidSystemAccessKey reports whether key names one of the enumerated
// system access flags.
func ValidSystemAccessKey(key string) bool { return systemAccessKeys[key] }

// DefaultOBD2Permissions returns a fresh permission map with read-only
// diagnostics enabled and every destructive capability off.
func DefaultOBD2Permissions() map[string]bool {
	return map[string]bool{
		PermReadData:       true,
		PermClearCodes:     false,
		PermWriteData:      false,
		PermBidirectional:  false,
		PermECUProgramming: false,
	}
}

// DefaultSystemAccess returns a fresh system access map with everything
// disabled.  Flags are granted explicitly after profile creation.
func DefaultSystemAccess() map[string]bool {
	return map[string]bool{
		AccessUserManagement: false,
		AccessSystemConfig:   false,
		AccessAuditLogs:      false,
		AccessFirmwareUpdate: false,
	}
}

// AdminProfile is the supplementary permission record attached to
// privileged accounts (role admin or above).  It maps 1:1 to a row in the
// `admin_profiles` table; the permission maps are stored as JSON columns.
//
// Fields:
//  UserID           – owning user, primary key (1:1 with users.id).
//  AdminLevel       – tier within the admin role, 1 to 3.
//  OBD2Permissions  – named booleans for vehicle diagnostic capabilities.
//  SystemAccess     – named booleans for platform administration areas.
//  UpdatedBy        – user id of the actor who last mutated the profile.
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – timestamp of last update.
type AdminProfile struct {
	UserID          string          // admin_profiles.user_id
	AdminLevel      int             // admin_profiles.admin_level (1..3)
	OBD2Permissions map[string]bool // admin_profiles.obd2_permissions (JSON)
	SystemAccess    map[string]bool // admin_profiles.system_access (JSON)
	UpdatedBy       string          // admin_profiles.updated_by
	CreatedAt       time.Time       // admin_profiles.created_at
	UpdatedAt       time.Time       // admin_profiles.updated_at
}

// ValidAdminLevel reports whether lvl is inside the accepted 1..3 range.
func ValidAdminLevel(lvl int) bool { return lvl >= 1 && lvl <= 3 }
