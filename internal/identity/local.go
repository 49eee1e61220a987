package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/repository"
)

const localIssuer = "questionnaire-api"

// MinPasswordLength is the shortest password LocalProvider accepts.
const MinPasswordLength = 8

type localClaims struct {
	jwt.RegisteredClaims
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

// LocalProvider is a self-contained identity provider for development and
// single-node deployments.
type LocalProvider struct {
	credentials repository.CredentialRepository
	secret      []byte
	ttl         time.Duration
	now         func() time.Time
}

func NewLocalProvider(credentials repository.CredentialRepository, secret string, ttl time.Duration) *LocalProvider {
	return &LocalProvider{
		credentials: credentials,
		secret:      []byte(secret),
		ttl:         ttl,
		now:         time.Now,
	}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrSignUpRejected)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrSignUpRejected, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	cred := &repository.Credential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Metadata:     metadata,
	}
	if err := p.credentials.Create(ctx, cred); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return p.issue(cred)
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	cred, err := p.credentials.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return p.issue(cred)
}

// ResolveUser verifies the token signature and expiry and checks that the
// identity still exists.
func (p *LocalProvider) ResolveUser(ctx context.Context, token string) (*domain.AuthenticatedUser, error) {
	claims := &localClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	cred, err := p.credentials.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return &domain.AuthenticatedUser{
		ID:       cred.ID,
		Email:    cred.Email,
		Metadata: cred.Metadata,
	}, nil
}

func (p *LocalProvider) issue(cred *repository.Credential) (*domain.Session, error) {
	now := p.now()
	claims := localClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cred.ID,
			Issuer:    localIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
			ID:        uuid.NewString(),
		},
		Email:    cred.Email,
		Metadata: cred.Metadata,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &domain.Session{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int(p.ttl.Seconds()),
		User: domain.AuthenticatedUser{
			ID:       cred.ID,
			Email:    cred.Email,
			Metadata: cred.Metadata,
		},
	}, nil
}

var _ Provider = (*LocalProvider)(nil)
