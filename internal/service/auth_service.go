package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/identity"
	"questionnaire-api/internal/repository"
)

type RegisterInput struct {
	Email    string
	Password string
	Username string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult pairs the provider session with the local profile.
type AuthResult struct {
	Session *domain.Session
	User    *domain.User
}

// AuthService registers and signs in users through the identity provider.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
}

type authService struct {
	provider identity.Provider
	users    repository.UserRepository
}

func NewAuthService(provider identity.Provider, users repository.UserRepository) AuthService {
	return &authService{
		provider: provider,
		users:    users,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" {
		return nil, errors.New("email is required")
	}
	if in.Password == "" {
		return nil, errors.New("password is required")
	}

	var metadata map[string]any
	if username != "" {
		metadata = map[string]any{"username": username}
	}

	session, err := s.provider.SignUp(ctx, email, in.Password, metadata)
	if err != nil {
		return nil, err
	}

	user, err := s.ensureProfile(ctx, session.User, username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Session: session, User: user}, nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	session, err := s.provider.SignIn(ctx, strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		return nil, err
	}

	username, _ := session.User.Metadata["username"].(string)
	user, err := s.ensureProfile(ctx, session.User, username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Session: session, User: user}, nil
}

// ensureProfile returns the profile for identity, creating it on first sight.
func (s *authService) ensureProfile(ctx context.Context, ident domain.AuthenticatedUser, username string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, ident.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	user = &domain.User{
		ID:       ident.ID,
		Email:    ident.Email,
		Username: username,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		// created concurrently by another request
		return s.users.GetByID(ctx, ident.ID)
	}
	return user, nil
}
