package mentorauth

import (
	"context"
	"strings"
	"time"
)

// Role is the closed set of account categories. A role is fixed at
// registration and never changes within this core's scope.
//
// Role values are parsed case-insensitively at the boundary via [ParseRole]
// and stored lowercase; Engine flows never re-validate them ad hoc.
type Role string

const (
	// RoleMentor is an exported constant or variable used by the authentication engine.
	RoleMentor Role = "mentor"
	// RoleMentee is an exported constant or variable used by the authentication engine.
	RoleMentee Role = "mentee"
	// RoleAdmin is an exported constant or variable used by the authentication engine.
	RoleAdmin Role = "admin"
)

// ParseRole describes the parserole operation and its observable behavior.
//
// ParseRole may return an error when input validation, dependency calls, or security checks fail.
// ParseRole does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleMentor:
		return RoleMentor, nil
	case RoleMentee:
		return RoleMentee, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", &FieldError{Field: "role", Reason: "must be mentor, mentee, or admin"}
	}
}

// String describes the string operation and its observable behavior.
func (r Role) String() string {
	return string(r)
}

// Account is the registered identity record served by an [AccountProvider].
// Email is globally unique; the password hash is a self-describing argon2id
// digest. Optional profile attributes are carried opaquely — profile CRUD is
// out of this core's scope.
type Account struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role

	OrganizationID  *int64
	ExperienceYears *int
	Contact         *string
	Gender          *string
	ProfilePicURL   *string
	GithubID        *string
}

// CreateAccountInput is the insert payload passed to [AccountProvider.Insert].
type CreateAccountInput struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

// AccountProvider is the interface callers must implement to integrate
// mentorauth with their relational user store. Implementations must
// guarantee email uniqueness and return [ErrProviderNotFound] /
// [ErrProviderDuplicateEmail] for the corresponding conditions.
type AccountProvider interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	Insert(ctx context.Context, input CreateAccountInput) (Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// Mailer delivers a one-time passcode to an email address. Delivery is
// fire-and-forget with a boolean-style result; no retry policy is defined
// here.
type Mailer interface {
	Deliver(ctx context.Context, email, code string) error
}

// RegisterRequest is the input to [Engine.Register]. Role is accepted
// case-insensitively and normalized to lowercase on store.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// RegisterResult is returned by [Engine.Register]. Registration does not
// auto-login, so no token is issued here.
type RegisterResult struct {
	AccountID int64
	Role      Role
}

// AccountSummary is the public slice of an account returned alongside a
// freshly issued session token.
type AccountSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// LoginResult is returned by [Engine.Login] on success.
type LoginResult struct {
	Token     string         `json:"access_token"`
	TokenType string         `json:"token_type"`
	Account   AccountSummary `json:"user"`
}

// TokenClaims is the decoded claim set of a validated session token.
type TokenClaims struct {
	AccountID int64
	Email     string
	Role      Role
	ExpiresAt time.Time
}
