package auth

import "errors"

// ErrInvalidCredentials covers every login rejection: unknown account,
// disabled account, wrong password.  Callers translate it to HTTP 401
// without distinguishing the cause.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken covers every token rejection: bad signature, expiry,
// revoked or missing session.  Verification fails closed on it.
var ErrInvalidToken = errors.New("invalid token")
