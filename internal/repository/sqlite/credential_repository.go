package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"questionnaire-api/internal/repository"
)

const createCredentialsTable = `
CREATE TABLE IF NOT EXISTS credentials (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL
);
`

type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) repository.CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCredentialsTable); err != nil {
		return fmt.Errorf("create credentials table: %w", err)
	}
	return nil
}

func (r *CredentialRepository) Create(ctx context.Context, cred *repository.Credential) error {
	meta, err := json.Marshal(cred.Metadata)
	if err != nil {
		return fmt.Errorf("encode credential metadata: %w", err)
	}
	if cred.Metadata == nil {
		meta = []byte("{}")
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO credentials (id, email, password_hash, metadata, created_at)
VALUES (?, ?, ?, ?, ?)`,
		cred.ID,
		strings.ToLower(cred.Email),
		cred.PasswordHash,
		string(meta),
		time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("credential %w", repository.ErrConflict)
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*repository.Credential, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, email, password_hash, metadata
FROM credentials
WHERE email = ?`, strings.ToLower(email))
	return scanCredential(row)
}

func (r *CredentialRepository) GetByID(ctx context.Context, id string) (*repository.Credential, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, email, password_hash, metadata
FROM credentials
WHERE id = ?`, id)
	return scanCredential(row)
}

func scanCredential(row interface {
	Scan(dest ...any) error
}) (*repository.Credential, error) {
	var (
		cred repository.Credential
		meta string
	)
	if err := row.Scan(&cred.ID, &cred.Email, &cred.PasswordHash, &meta); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("credential %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}
	if meta != "" {
		if err := json.Unmarshal([]byte(meta), &cred.Metadata); err != nil {
			return nil, fmt.Errorf("decode credential metadata: %w", err)
		}
	}
	return &cred, nil
}
