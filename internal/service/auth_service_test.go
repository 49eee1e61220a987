package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/identity"
)

func newLocalAuth(t *testing.T) (AuthService, *identity.LocalProvider, testRepos) {
	t.Helper()
	r := newTestRepos(t)
	provider := identity.NewLocalProvider(r.credentials, "test-secret", time.Hour)
	return NewAuthService(provider, r.users), provider, r
}

func TestRegisterCreatesProfile(t *testing.T) {
	svc, provider, r := newLocalAuth(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Email: " Ada@Example.com ", Password: "correct-horse", Username: " ada "})
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	assert.NotEmpty(t, res.Session.AccessToken)
	assert.Equal(t, "ada", res.User.Username)
	assert.Equal(t, int64(0), res.User.Points)
	assert.Equal(t, res.Session.User.ID, res.User.ID)

	profile, err := r.users.GetByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", profile.Email)

	resolved, err := provider.ResolveUser(ctx, res.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, resolved.ID)

	_, err = svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "another-pass"})
	assert.ErrorIs(t, err, identity.ErrUserAlreadyExists)
}

func TestRegisterRejectsInput(t *testing.T) {
	svc, _, _ := newLocalAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Password: "long-enough"})
	assert.Error(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "short"})
	assert.ErrorIs(t, err, identity.ErrSignUpRejected)
}

func TestLoginCreatesMissingProfile(t *testing.T) {
	svc, provider, r := newLocalAuth(t)
	ctx := context.Background()

	// identity exists at the provider but has no local profile yet
	session, err := provider.SignUp(ctx, "grace@example.com", "hopper-1906", map[string]any{"username": "grace"})
	require.NoError(t, err)
	_, err = r.users.GetByID(ctx, session.User.ID)
	require.Error(t, err)

	res, err := svc.Login(ctx, LoginInput{Email: "grace@example.com", Password: "hopper-1906"})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, res.User.ID)
	assert.Equal(t, "grace", res.User.Username)

	again, err := svc.Login(ctx, LoginInput{Email: "GRACE@example.com", Password: "hopper-1906"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, again.User.ID)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _, _ := newLocalAuth(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Email: "lin@example.com", Password: "right-password"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "lin@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "right-password"})
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestUserService(t *testing.T) {
	r := newTestRepos(t)
	svc := NewUserService(r.users, r.ledger)
	ctx := context.Background()
	seedResponses(t, r)

	profile, err := svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(20), profile.Points)

	txs, err := svc.ListTransactions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, int64(20), txs[0].Amount)
	assert.Equal(t, domain.TransactionSurveyReward, txs[0].Type)

	_, err = svc.GetProfile(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
