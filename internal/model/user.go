package model

import "time"

// Role is the privilege level of a user account.  Roles are strictly
// ordered so privilege checks can compare levels instead of enumerating
// role names.
type Role string

const (
	RoleGuest      Role = "guest"
	RoleUser       Role = "user"
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// roleLevels maps each role to its position in the privilege order.
var roleLevels = map[Role]int{
	RoleGuest:      0,
	RoleUser:       1,
	RoleTechnician: 2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Level returns the numeric privilege level of the role, or -1 when the
// role is not one of the known values.
func (r Role) Level() int {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return -1
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool { return r.Level() >= 0 }

// AtLeast reports whether the role has at least the privilege of other.
// Unknown roles never satisfy any requirement.
func (r Role) AtLeast(other Role) bool {
	lvl := r.Level()
	return lvl >= 0 && lvl >= other.Level()
}

// IsAdmin reports whether the role is admin or above.  Accounts at this
// level carry an AdminProfile with diagnostic permission maps.
func (r Role) IsAdmin() bool { return r.AtLeast(RoleAdmin) }

// ParseRole normalizes a string into a Role.  The boolean result is false
// when the input does not name a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// User represents an account record as stored in the `users` table.
// Passwords are never stored in the clear; PasswordHash holds the bcrypt
// digest.  Accounts are soft-disabled via IsActive and never hard-deleted.
//
// Fields:
//  ID           – UUID primary key.
//  Email        – unique email address (stored lower-cased).
//  Username     – unique login name (stored lower-cased).
//  PasswordHash – bcrypt hashed password.
//  Role         – privilege level, see Role.
//  IsActive     – whether the account may authenticate.
//  LastLogin    – time of the most recent successful login (nil if never).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           string     // users.id
	Email        string     // users.email
	Username     string     // users.username
	PasswordHash string     // users.password_hash
	Role         Role       // users.role
	IsActive     bool       // users.is_active
	LastLogin    *time.Time // users.last_login (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}
