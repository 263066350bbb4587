package model

import "time"

// Security event types emitted by the auth and profile layers.
const (
	EventSuccessfulLogin     = "successful_login"
	EventFailedLogin         = "failed_login"
	EventLogout              = "logout"
	EventSessionRevoked      = "session_revoked"
	EventTokenExpired        = "token_expired"
	EventTokenInvalid        = "token_invalid"
	EventPasswordChanged     = "password_changed"
	EventPermissionDenied    = "permission_denied"
	EventPermissionsUpdated  = "permissions_updated"
	EventUserCreated         = "user_created"
	EventAccountLocked       = "account_locked"
	EventAdminProfileCreated = "admin_profile_created"
	EventAdminProfileDeleted = "admin_profile_deleted"
)

// Severity levels attached to security events.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// highSeverity and mediumSeverity are the fixed lookup sets used to
// derive a severity from an event type.  Types in neither set are low.
var highSeverity = map[string]bool{
	EventFailedLogin:         true,
	EventAccountLocked:       true,
	EventPermissionDenied:    true,
	EventTokenInvalid:        true,
	EventAdminProfileDeleted: true,
}

var mediumSeverity = map[string]bool{
	EventPasswordChanged:     true,
	EventPermissionsUpdated:  true,
	EventSessionRevoked:      true,
	EventUserCreated:         true,
	EventAdminProfileCreated: true,
}

// SeverityFor returns the severity of an event type.
func SeverityFor(eventType string) string {
	switch {
	case highSeverity[eventType]:
		return SeverityHigh
	case mediumSeverity[eventType]:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// SecurityEvent is one entry in the in-memory audit ring.  Events are
// append-only; the ring evicts oldest-first past capacity.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      string            `json:"type"`
	UserID    string            `json:"user_id,omitempty"`
	Severity  string            `json:"severity"`
	Details   map[string]string `json:"details,omitempty"`
}
