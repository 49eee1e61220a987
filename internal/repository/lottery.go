package repository

import (
	"context"
	"time"

	"questionnaire-api/internal/domain"
)

// LotteryRepository exposes persistence operations for lottery events and entries.
type LotteryRepository interface {
	Init(ctx context.Context) error
	CreateEvent(ctx context.Context, event *domain.LotteryEvent) error
	GetEvent(ctx context.Context, id string) (*domain.LotteryEvent, error)
	ListActive(ctx context.Context, now time.Time) ([]domain.LotteryEvent, error)
	HasEntry(ctx context.Context, eventID, userID string) (bool, error)
	// Enter debits the entry cost, records the entry and bumps the participant
	// counter atomically.
	Enter(ctx context.Context, entry *domain.LotteryEntry, cost int64) error
}
