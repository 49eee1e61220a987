package service

import (
	"context"
	"errors"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/repository"
)

const maxTransactions = 100

// UserService describes profile and ledger reads for the caller.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	ListTransactions(ctx context.Context, userID string) ([]domain.PointTransaction, error)
}

type userService struct {
	users  repository.UserRepository
	ledger repository.LedgerRepository
}

func NewUserService(users repository.UserRepository, ledger repository.LedgerRepository) UserService {
	return &userService{
		users:  users,
		ledger: ledger,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListTransactions(ctx context.Context, userID string) ([]domain.PointTransaction, error) {
	return s.ledger.ListByUser(ctx, userID, maxTransactions)
}
