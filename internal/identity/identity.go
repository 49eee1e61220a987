// Package identity talks to the service of record for user identities.
//
// Two providers are available: GoTrueProvider delegates to a hosted GoTrue
// (Supabase Auth) instance, LocalProvider keeps bcrypt credentials in sqlite
// and issues HS256 access tokens itself. Both are safe for concurrent use and
// are meant to be built once at startup.
package identity

import (
	"context"
	"errors"

	"questionnaire-api/internal/domain"
)

var (
	// ErrInvalidToken is returned when the provider rejects a bearer token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	// ErrUserAlreadyExists is returned when signing up with a registered email.
	ErrUserAlreadyExists = errors.New("user already registered")
	// ErrSignUpRejected is returned when the provider refuses a registration.
	ErrSignUpRejected = errors.New("sign up rejected")
	// ErrUnavailable wraps transport failures and unexpected provider replies.
	ErrUnavailable = errors.New("identity provider unavailable")
)

// Resolver turns a bearer token into the identity it was issued for.
type Resolver interface {
	ResolveUser(ctx context.Context, token string) (*domain.AuthenticatedUser, error)
}

// Provider is the full identity provider surface used by the API.
type Provider interface {
	Resolver
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.Session, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
}
