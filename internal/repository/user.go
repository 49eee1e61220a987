package repository

import (
	"context"

	"questionnaire-api/internal/domain"
)

// UserRepository defines persistence operations for user profiles.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// CredentialRepository stores password hashes for the built-in identity provider.
type CredentialRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, cred *Credential) error
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	GetByID(ctx context.Context, id string) (*Credential, error)
}

// Credential is a locally managed login.
type Credential struct {
	ID           string
	Email        string
	PasswordHash string
	Metadata     map[string]any
}

// LedgerRepository reads point transactions.
type LedgerRepository interface {
	Init(ctx context.Context) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.PointTransaction, error)
	Totals(ctx context.Context, userID string) (earned, spent int64, err error)
}
