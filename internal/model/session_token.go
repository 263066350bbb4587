package model

import "time"

// SessionToken models a row in the `session_tokens` table.  One row is
// created per login and rotated in place on refresh.  Plain tokens are
// never stored; TokenHash and RefreshTokenHash carry SHA-256 hex digests.
//
// Fields:
//  ID               – UUID primary key.
//  UserID           – owner of the session.
//  TokenHash        – SHA-256 hex digest of the access JWT (unique).
//  RefreshTokenHash – SHA-256 hex digest of the opaque refresh token (unique).
//  DeviceInfo       – free-form client device description.
//  IPAddress        – remote address recorded at login.
//  UserAgent        – User-Agent header recorded at login.
//  ExpiresAt        – expiry of the session (refresh horizon).
//  LastActivity     – last time the session was seen on a verified request.
//  IsActive         – false once logged out or revoked.
//  CreatedAt        – timestamp of creation.
type SessionToken struct {
	ID               string    // session_tokens.id
	UserID           string    // session_tokens.user_id
	TokenHash        string    // session_tokens.token_hash
	RefreshTokenHash string    // session_tokens.refresh_token_hash
	DeviceInfo       string    // session_tokens.device_info
	IPAddress        string    // session_tokens.ip_address
	UserAgent        string    // session_tokens.user_agent
	ExpiresAt        time.Time // session_tokens.expires_at
	LastActivity     time.Time // session_tokens.last_activity
	IsActive         bool      // session_tokens.is_active
	CreatedAt        time.Time // session_tokens.created_at
}

// IsExpired reports whether the session is past its expiry.
func (s SessionToken) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// IsValid reports whether the session may still be used: it must be
// active and not expired.
func (s SessionToken) IsValid() bool {
	return s.IsActive && !s.IsExpired()
}
