// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values let higher layers such as the
// managers distinguish between failure scenarios: a duplicate account
// versus a missing profile versus a plain query error.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique
// email index.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when an insert collides with the unique
// username index.
var ErrUsernameExists = errors.New("username already exists")

// ErrProfileExists is returned when an admin profile already exists for
// the target user.
var ErrProfileExists = errors.New("admin profile already exists")
