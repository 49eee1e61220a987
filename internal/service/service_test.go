package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/repository"
	"questionnaire-api/internal/repository/sqlite"
)

type testRepos struct {
	users       repository.UserRepository
	credentials repository.CredentialRepository
	ledger      repository.LedgerRepository
	surveys     repository.SurveyRepository
	responses   repository.ResponseRepository
	lottery     repository.LotteryRepository
}

func newTestRepos(t *testing.T) testRepos {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := testRepos{
		users:       sqlite.NewUserRepository(db),
		credentials: sqlite.NewCredentialRepository(db),
		ledger:      sqlite.NewLedgerRepository(db),
		surveys:     sqlite.NewSurveyRepository(db),
		responses:   sqlite.NewResponseRepository(db),
		lottery:     sqlite.NewLotteryRepository(db),
	}
	ctx := context.Background()
	for _, initRepo := range []func(context.Context) error{
		r.users.Init, r.credentials.Init, r.ledger.Init,
		r.surveys.Init, r.responses.Init, r.lottery.Init,
	} {
		require.NoError(t, initRepo(ctx))
	}
	return r
}

func (r testRepos) addUser(t *testing.T, id string, points int64) {
	t.Helper()
	require.NoError(t, r.users.Create(context.Background(), &domain.User{
		ID:     id,
		Email:  id + "@example.com",
		Points: points,
	}))
}

func intPtr(v int) *int { return &v }

// sampleSurvey has one question of each validated type, in this order:
// choice (required), checkbox, rating, email, date, number, text.
func sampleSurvey(reward int64, maxResponses *int) CreateSurveyInput {
	return CreateSurveyInput{
		Title:        "Campus life",
		Description:  "Tell us about your week",
		RewardPoints: reward,
		MaxResponses: maxResponses,
		Questions: []QuestionInput{
			{Text: "Favourite meal", Type: domain.QuestionMultipleChoice, Options: []string{"Breakfast", "Lunch", "Dinner"}, IsRequired: true},
			{Text: "Sports", Type: domain.QuestionCheckbox, Options: []string{"Tennis", "Rowing"}},
			{Text: "Rate the library", Type: domain.QuestionRating},
			{Text: "Contact", Type: domain.QuestionEmail},
			{Text: "Arrival", Type: domain.QuestionDate},
			{Text: "Hours studied", Type: domain.QuestionNumber},
			{Text: "Anything else", Type: domain.QuestionText},
		},
	}
}

func createSampleSurvey(t *testing.T, svc SurveyService, creator string, reward int64, maxResponses *int) *domain.Survey {
	t.Helper()
	ctx := context.Background()
	res, err := svc.Create(ctx, sampleSurvey(reward, maxResponses), creator)
	require.NoError(t, err)
	survey, err := svc.Get(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, survey.Questions, 7)
	return survey
}
