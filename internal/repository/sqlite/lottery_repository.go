package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/repository"
)

const createLotteryTables = `
CREATE TABLE IF NOT EXISTS lottery_events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	entry_cost INTEGER NOT NULL DEFAULT 0,
	prize_description TEXT NOT NULL DEFAULT '',
	max_participants INTEGER NULL,
	current_participants INTEGER NOT NULL DEFAULT 0,
	end_date DATETIME NOT NULL,
	status TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS lottery_entries (
	id TEXT PRIMARY KEY,
	event_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	entered_at DATETIME NOT NULL,
	UNIQUE(event_id, user_id),
	FOREIGN KEY(event_id) REFERENCES lottery_events(id) ON DELETE CASCADE
);
`

type LotteryRepository struct {
	db *sql.DB
}

func NewLotteryRepository(db *sql.DB) repository.LotteryRepository {
	return &LotteryRepository{db: db}
}

func (r *LotteryRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createLotteryTables); err != nil {
		return fmt.Errorf("create lottery tables: %w", err)
	}
	return nil
}

func (r *LotteryRepository) CreateEvent(ctx context.Context, event *domain.LotteryEvent) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO lottery_events (id, title, description, entry_cost, prize_description, max_participants, current_participants, end_date, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Title,
		event.Description,
		event.EntryCost,
		event.PrizeDescription,
		nullInt(event.MaxParticipants),
		event.CurrentParticipants,
		event.EndDate.UTC(),
		string(event.Status),
	)
	if err != nil {
		return fmt.Errorf("insert lottery event: %w", err)
	}
	return nil
}

const lotteryEventColumns = `id, title, description, entry_cost, prize_description, max_participants, current_participants, end_date, status`

func (r *LotteryRepository) GetEvent(ctx context.Context, id string) (*domain.LotteryEvent, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+lotteryEventColumns+`
FROM lottery_events
WHERE id = ?`, id)
	return scanLotteryEvent(row)
}

func (r *LotteryRepository) ListActive(ctx context.Context, now time.Time) ([]domain.LotteryEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+lotteryEventColumns+`
FROM lottery_events
WHERE status = ? AND end_date > ?
ORDER BY end_date ASC`, string(domain.LotteryStatusActive), now.UTC())
	if err != nil {
		return nil, fmt.Errorf("query lottery events: %w", err)
	}
	defer rows.Close()

	events := []domain.LotteryEvent{}
	for rows.Next() {
		event, err := scanLotteryEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func (r *LotteryRepository) HasEntry(ctx context.Context, eventID, userID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(1)
FROM lottery_entries
WHERE event_id = ? AND user_id = ?`, eventID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check lottery entry: %w", err)
	}
	return n > 0, nil
}

func (r *LotteryRepository) Enter(ctx context.Context, entry *domain.LotteryEntry, cost int64) error {
	entry.EnteredAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE lottery_events
SET current_participants = current_participants + 1
WHERE id = ? AND (max_participants IS NULL OR current_participants < max_participants)`,
		entry.EventID,
	)
	if err != nil {
		return fmt.Errorf("update participants: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("participants rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("lottery event %w", repository.ErrCapacityReached)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO lottery_entries (id, event_id, user_id, entered_at)
VALUES (?, ?, ?, ?)`,
		entry.ID,
		entry.EventID,
		entry.UserID,
		entry.EnteredAt,
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lottery entry %w", repository.ErrConflict)
		}
		return fmt.Errorf("insert lottery entry: %w", err)
	}

	if cost > 0 {
		if err := applyPoints(ctx, tx, entry.UserID, -cost, domain.TransactionLotteryEntry, entry.EventID, "Lottery entry"); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit lottery entry: %w", err)
	}
	return nil
}

func scanLotteryEvent(scanner interface {
	Scan(dest ...any) error
}) (*domain.LotteryEvent, error) {
	var (
		event           domain.LotteryEvent
		maxParticipants sql.NullInt64
		status          string
	)
	if err := scanner.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.EntryCost,
		&event.PrizeDescription,
		&maxParticipants,
		&event.CurrentParticipants,
		&event.EndDate,
		&status,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lottery event %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan lottery event: %w", err)
	}
	event.Status = domain.LotteryStatus(status)
	if maxParticipants.Valid {
		v := int(maxParticipants.Int64)
		event.MaxParticipants = &v
	}
	return &event, nil
}
