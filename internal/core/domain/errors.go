package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrValidation = errors.New("missing or malformed field")
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidCredentials covers both "unknown email" and "wrong password"
// so callers cannot enumerate registered identities.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrLockedOut is distinguishable from ErrInvalidCredentials so the HTTP
// layer can answer with a rate-limit class status instead of a plain 401.
var ErrLockedOut = errors.New("account temporarily locked")

// ErrInvalidToken covers signature, structure, type-mismatch and expiry
// failures uniformly; the split is never surfaced to the caller.
var ErrInvalidToken = errors.New("invalid token")

// ErrHashing marks a failure of the underlying hashing primitive. It is an
// operational fault, not something the caller can correct.
var ErrHashing = errors.New("password hashing failed")

// WeakPasswordError reports every strength rule a candidate password
// violated, not just the first.
type WeakPasswordError struct {
	Violations []string
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("password too weak: %s", strings.Join(e.Violations, "; "))
}
