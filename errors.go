package mentorauth

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is an exported constant or variable used by the authentication engine.
	ErrValidation = errors.New("validation failed")
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrBadCredentials is an exported constant or variable used by the authentication engine.
	ErrBadCredentials = errors.New("invalid credentials")
	// ErrRoleMismatch is an exported constant or variable used by the authentication engine.
	ErrRoleMismatch = errors.New("account role mismatch")
	// ErrDuplicateEmail is an exported constant or variable used by the authentication engine.
	ErrDuplicateEmail = errors.New("user with this email already exists")
	// ErrTokenInvalid is an exported constant or variable used by the authentication engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is an exported constant or variable used by the authentication engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrMalformedClaims is an exported constant or variable used by the authentication engine.
	ErrMalformedClaims = errors.New("token claims malformed")
	// ErrNoChallenge is an exported constant or variable used by the authentication engine.
	ErrNoChallenge = errors.New("no otp challenge for this email")
	// ErrOTPExpired is an exported constant or variable used by the authentication engine.
	ErrOTPExpired = errors.New("otp challenge expired")
	// ErrOTPMismatch is an exported constant or variable used by the authentication engine.
	ErrOTPMismatch = errors.New("otp code mismatch")
	// ErrOTPDeliveryFailed is an exported constant or variable used by the authentication engine.
	ErrOTPDeliveryFailed = errors.New("otp delivery failed")
	// ErrInternal is an exported constant or variable used by the authentication engine.
	ErrInternal = errors.New("internal error")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrProviderNotFound is an exported constant or variable used by the authentication engine.
	ErrProviderNotFound = errors.New("provider account not found")
	// ErrProviderDuplicateEmail is an exported constant or variable used by the authentication engine.
	ErrProviderDuplicateEmail = errors.New("provider duplicate email")
)

// FieldError is a field-level validation failure. It unwraps to
// [ErrValidation] so callers can branch with errors.Is while still
// surfacing which field was rejected.
type FieldError struct {
	Field  string
	Reason string
}

// Error describes the error operation and its observable behavior.
func (e *FieldError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// Unwrap describes the unwrap operation and its observable behavior.
func (e *FieldError) Unwrap() error {
	return ErrValidation
}

// RoleMismatchError is returned by [Engine.Login] when the stored account
// role differs from the role the caller attempted to log in as. It names
// both roles and unwraps to [ErrRoleMismatch].
type RoleMismatchError struct {
	Actual    Role
	Attempted Role
}

// Error describes the error operation and its observable behavior.
func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("this account is registered as a %s, not a %s", e.Actual, e.Attempted)
}

// Unwrap describes the unwrap operation and its observable behavior.
func (e *RoleMismatchError) Unwrap() error {
	return ErrRoleMismatch
}
