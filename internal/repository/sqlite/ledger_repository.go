package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/repository"
)

const createPointTransactionsTable = `
CREATE TABLE IF NOT EXISTS point_transactions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	amount INTEGER NOT NULL,
	transaction_type TEXT NOT NULL,
	related_id TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_point_transactions_user_id ON point_transactions(user_id, created_at);
`

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPointTransactionsTable); err != nil {
		return fmt.Errorf("create point_transactions table: %w", err)
	}
	return nil
}

func (r *LedgerRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.PointTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, amount, transaction_type, related_id, description, created_at
FROM point_transactions
WHERE user_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query point transactions: %w", err)
	}
	defer rows.Close()

	txs := []domain.PointTransaction{}
	for rows.Next() {
		var (
			tx     domain.PointTransaction
			txType string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &txType, &tx.RelatedID, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan point transaction: %w", err)
		}
		tx.Type = domain.TransactionType(txType)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *LedgerRepository) Totals(ctx context.Context, userID string) (int64, int64, error) {
	var earned, spent int64
	err := r.db.QueryRowContext(ctx, `
SELECT
	COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0)
FROM point_transactions
WHERE user_id = ?`, userID).Scan(&earned, &spent)
	if err != nil {
		return 0, 0, fmt.Errorf("sum point transactions: %w", err)
	}
	return earned, spent, nil
}

// applyPoints moves a user's balance by amount inside tx and records the
// movement. Debits that would take the balance below zero fail with
// repository.ErrInsufficientPoints.
func applyPoints(ctx context.Context, tx *sql.Tx, userID string, amount int64, txType domain.TransactionType, relatedID, description string) error {
	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
UPDATE users
SET points = points + ?, updated_at = ?
WHERE id = ? AND points + ? >= 0`,
		amount, now, userID, amount,
	)
	if err != nil {
		return fmt.Errorf("update points: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("points rows affected: %w", err)
	}
	if aff == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE id = ?`, userID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("user %w", repository.ErrNotFound)
		}
		return repository.ErrInsufficientPoints
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO point_transactions (id, user_id, amount, transaction_type, related_id, description, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		userID,
		amount,
		string(txType),
		relatedID,
		description,
		now,
	); err != nil {
		return fmt.Errorf("insert point transaction: %w", err)
	}
	return nil
}
