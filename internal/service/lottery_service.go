package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/repository"
)

type EnterResult struct {
	EntryID     string
	EventID     string
	PointsSpent int64
	Message     string
}

// LotteryService lists open lottery events and buys users into them.
type LotteryService interface {
	ListActive(ctx context.Context) ([]domain.LotteryEvent, error)
	Enter(ctx context.Context, eventID, userID string) (*EnterResult, error)
}

type lotteryService struct {
	lottery repository.LotteryRepository
	users   repository.UserRepository
	now     func() time.Time
}

func NewLotteryService(lottery repository.LotteryRepository, users repository.UserRepository) LotteryService {
	return &lotteryService{
		lottery: lottery,
		users:   users,
		now:     time.Now,
	}
}

func (s *lotteryService) ListActive(ctx context.Context) ([]domain.LotteryEvent, error) {
	return s.lottery.ListActive(ctx, s.now().UTC())
}

func (s *lotteryService) Enter(ctx context.Context, eventID, userID string) (*EnterResult, error) {
	event, err := s.lottery.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if !event.Open(s.now()) {
		return nil, ErrEventClosed
	}
	if event.Full() {
		return nil, ErrEventFull
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.IsBanned {
		return nil, ErrUserBanned
	}

	entered, err := s.lottery.HasEntry(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if entered {
		return nil, ErrAlreadyEntered
	}
	if user.Points < event.EntryCost {
		return nil, ErrInsufficientPoints
	}

	entry := &domain.LotteryEntry{
		ID:      uuid.NewString(),
		EventID: eventID,
		UserID:  userID,
	}
	if err := s.lottery.Enter(ctx, entry, event.EntryCost); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrAlreadyEntered
		case errors.Is(err, repository.ErrCapacityReached):
			return nil, ErrEventFull
		case errors.Is(err, repository.ErrInsufficientPoints):
			return nil, ErrInsufficientPoints
		}
		return nil, err
	}

	return &EnterResult{
		EntryID:     entry.ID,
		EventID:     eventID,
		PointsSpent: event.EntryCost,
		Message:     "Successfully entered lottery",
	}, nil
}
