package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/repository"
)

type repos struct {
	db          *sql.DB
	users       repository.UserRepository
	ledger      repository.LedgerRepository
	credentials repository.CredentialRepository
	surveys     repository.SurveyRepository
	responses   repository.ResponseRepository
	lottery     repository.LotteryRepository
}

func openTestDB(t *testing.T) repos {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := repos{
		db:          db,
		users:       NewUserRepository(db),
		ledger:      NewLedgerRepository(db),
		credentials: NewCredentialRepository(db),
		surveys:     NewSurveyRepository(db),
		responses:   NewResponseRepository(db),
		lottery:     NewLotteryRepository(db),
	}
	ctx := context.Background()
	require.NoError(t, r.users.Init(ctx))
	require.NoError(t, r.ledger.Init(ctx))
	require.NoError(t, r.credentials.Init(ctx))
	require.NoError(t, r.surveys.Init(ctx))
	require.NoError(t, r.responses.Init(ctx))
	require.NoError(t, r.lottery.Init(ctx))
	return r
}

func createUser(t *testing.T, r repos, id string, points int64) {
	t.Helper()
	require.NoError(t, r.users.Create(context.Background(), &domain.User{
		ID:     id,
		Email:  id + "@example.com",
		Points: points,
	}))
}

func createSurvey(t *testing.T, r repos, creator string, reward int64, maxResponses *int) *domain.Survey {
	t.Helper()
	survey := &domain.Survey{
		ID:           uuid.NewString(),
		CreatorID:    creator,
		Title:        "Campus dining",
		Description:  "How do you rate the cafeteria?",
		RewardPoints: reward,
		MaxResponses: maxResponses,
		Status:       domain.SurveyStatusActive,
		Questions: []domain.Question{
			{ID: uuid.NewString(), Text: "Favourite meal", Type: domain.QuestionMultipleChoice, Options: []string{"Breakfast", "Lunch"}, IsRequired: true, OrderIndex: 0},
			{ID: uuid.NewString(), Text: "Comments", Type: domain.QuestionText, OrderIndex: 1},
		},
	}
	require.NoError(t, r.surveys.Create(context.Background(), survey))
	return survey
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()

	createUser(t, r, "u1", 10)

	got, err := r.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", got.Email)
	assert.Equal(t, int64(10), got.Points)
	assert.False(t, got.IsBanned)

	err = r.users.Create(ctx, &domain.User{ID: "u1", Email: "dup@example.com"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = r.users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCredentialRepository_EmailIsCaseInsensitive(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, r.credentials.Create(ctx, &repository.Credential{
		ID:           "c1",
		Email:        "Alice@Example.com",
		PasswordHash: "hash",
		Metadata:     map[string]any{"username": "alice"},
	}))

	got, err := r.credentials.GetByEmail(ctx, "alice@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, "alice", got.Metadata["username"])

	err = r.credentials.Create(ctx, &repository.Credential{ID: "c2", Email: "alice@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestSurveyRepository_CreateGetList(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()

	survey := createSurvey(t, r, "creator", 5, nil)

	got, err := r.surveys.Get(ctx, survey.ID)
	require.NoError(t, err)
	assert.Equal(t, survey.Title, got.Title)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, []string{"Breakfast", "Lunch"}, got.Questions[0].Options)
	assert.Empty(t, got.Questions[1].Options)
	assert.Nil(t, got.MaxResponses)

	_, err = r.surveys.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	for i := 0; i < 4; i++ {
		createSurvey(t, r, "creator", 0, nil)
	}

	page, err := r.surveys.List(ctx, repository.SurveyFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page, 3)

	rest, err := r.surveys.List(ctx, repository.SurveyFilter{Skip: 3, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	found, err := r.surveys.List(ctx, repository.SurveyFilter{Search: "CAFETERIA", Limit: 20})
	require.NoError(t, err)
	assert.Len(t, found, 5)

	none, err := r.surveys.List(ctx, repository.SurveyFilter{Search: "100%", Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSurveyRepository_SearchFoldsNonASCII(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()

	survey := &domain.Survey{
		ID:          uuid.NewString(),
		CreatorID:   "creator",
		Title:       "Über Umfrage",
		Description: "ÉTUDE sur la cantine",
		Status:      domain.SurveyStatusActive,
		Questions: []domain.Question{
			{ID: uuid.NewString(), Text: "Kommentar", Type: domain.QuestionText},
		},
	}
	require.NoError(t, r.surveys.Create(ctx, survey))
	createSurvey(t, r, "creator", 0, nil)

	for _, term := range []string{"Über", "über", "ÜBER", "umfrage", "étude", "Étude"} {
		found, err := r.surveys.List(ctx, repository.SurveyFilter{Search: term, Limit: 20})
		require.NoError(t, err, term)
		require.Len(t, found, 1, term)
		assert.Equal(t, survey.ID, found[0].ID, term)
	}
}

func TestSurveyRepository_Categories(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()

	// a second Init must not duplicate the seed rows
	require.NoError(t, r.surveys.Init(ctx))

	categories, err := r.surveys.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, len(defaultCategories))

	ok, err := r.surveys.CategoryExists(ctx, categories[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.surveys.CategoryExists(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, ok)

	id := categories[1].ID
	survey := createSurvey(t, r, "creator", 0, nil)
	_ = survey
	withCategory := &domain.Survey{ID: uuid.NewString(), CreatorID: "creator", Title: "Study habits", CategoryID: &id, Status: domain.SurveyStatusActive}
	require.NoError(t, r.surveys.Create(ctx, withCategory))

	filtered, err := r.surveys.List(ctx, repository.SurveyFilter{CategoryID: &id, Limit: 20})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, withCategory.ID, filtered[0].ID)
}

func TestResponseRepository_SubmitCreditsReward(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()

	createUser(t, r, "respondent", 0)
	survey := createSurvey(t, r, "creator", 7, nil)

	resp := &domain.SurveyResponse{
		ID:           uuid.NewString(),
		SurveyID:     survey.ID,
		RespondentID: "respondent",
		Answers: domain.Answers{
			survey.Questions[0].ID: domain.TextAnswer("Lunch"),
		},
	}
	require.NoError(t, r.responses.Submit(ctx, resp, survey.RewardPoints))

	user, err := r.users.GetByID(ctx, "respondent")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.Points)

	txs, err := r.ledger.ListByUser(ctx, "respondent", 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionSurveyReward, txs[0].Type)
	assert.Equal(t, survey.ID, txs[0].RelatedID)

	exists, err := r.responses.Exists(ctx, survey.ID, "respondent")
	require.NoError(t, err)
	assert.True(t, exists)

	err = r.responses.Submit(ctx, &domain.SurveyResponse{ID: uuid.NewString(), SurveyID: survey.ID, RespondentID: "respondent", Answers: resp.Answers}, 7)
	assert.ErrorIs(t, err, repository.ErrConflict)

	// the failed duplicate must not have moved the counter or the balance
	got, err := r.surveys.Get(ctx, survey.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentResponses)
	user, err = r.users.GetByID(ctx, "respondent")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.Points)

	stored, err := r.responses.ListBySurvey(ctx, survey.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	text, ok := stored[0].Answers[survey.Questions[0].ID].Text()
	assert.True(t, ok)
	assert.Equal(t, "Lunch", text)

	n, err := r.responses.CountByRespondent(ctx, "respondent")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestResponseRepository_SubmitClosesFullSurvey(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()

	createUser(t, r, "a", 0)
	createUser(t, r, "b", 0)
	one := 1
	survey := createSurvey(t, r, "creator", 0, &one)
	answers := domain.Answers{survey.Questions[0].ID: domain.TextAnswer("Breakfast")}

	require.NoError(t, r.responses.Submit(ctx, &domain.SurveyResponse{ID: uuid.NewString(), SurveyID: survey.ID, RespondentID: "a", Answers: answers}, 0))

	got, err := r.surveys.Get(ctx, survey.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SurveyStatusClosed, got.Status)
	assert.True(t, got.Full())

	err = r.responses.Submit(ctx, &domain.SurveyResponse{ID: uuid.NewString(), SurveyID: survey.ID, RespondentID: "b", Answers: answers}, 0)
	assert.ErrorIs(t, err, repository.ErrCapacityReached)

	surveys, responses, err := r.surveys.CountByCreator(ctx, "creator")
	require.NoError(t, err)
	assert.Equal(t, 1, surveys)
	assert.Equal(t, 1, responses)
}

func TestLotteryRepository_Enter(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()

	createUser(t, r, "rich", 100)
	createUser(t, r, "poor", 5)
	two := 2
	event := &domain.LotteryEvent{
		ID:              uuid.NewString(),
		Title:           "Headphones",
		EntryCost:       30,
		MaxParticipants: &two,
		EndDate:         time.Now().Add(24 * time.Hour),
		Status:          domain.LotteryStatusActive,
	}
	require.NoError(t, r.lottery.CreateEvent(ctx, event))

	require.NoError(t, r.lottery.Enter(ctx, &domain.LotteryEntry{ID: uuid.NewString(), EventID: event.ID, UserID: "rich"}, event.EntryCost))

	user, err := r.users.GetByID(ctx, "rich")
	require.NoError(t, err)
	assert.Equal(t, int64(70), user.Points)

	earned, spent, err := r.ledger.Totals(ctx, "rich")
	require.NoError(t, err)
	assert.Equal(t, int64(0), earned)
	assert.Equal(t, int64(30), spent)

	err = r.lottery.Enter(ctx, &domain.LotteryEntry{ID: uuid.NewString(), EventID: event.ID, UserID: "rich"}, event.EntryCost)
	assert.ErrorIs(t, err, repository.ErrConflict)

	err = r.lottery.Enter(ctx, &domain.LotteryEntry{ID: uuid.NewString(), EventID: event.ID, UserID: "poor"}, event.EntryCost)
	assert.ErrorIs(t, err, repository.ErrInsufficientPoints)

	got, err := r.lottery.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentParticipants)

	has, err := r.lottery.HasEntry(ctx, event.ID, "rich")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestLotteryRepository_ListActive(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	events := []*domain.LotteryEvent{
		{ID: "later", Title: "Later", EndDate: now.Add(48 * time.Hour), Status: domain.LotteryStatusActive},
		{ID: "sooner", Title: "Sooner", EndDate: now.Add(time.Hour), Status: domain.LotteryStatusActive},
		{ID: "ended", Title: "Ended", EndDate: now.Add(-time.Hour), Status: domain.LotteryStatusActive},
		{ID: "closed", Title: "Closed", EndDate: now.Add(time.Hour), Status: domain.LotteryStatusClosed},
	}
	for _, e := range events {
		require.NoError(t, r.lottery.CreateEvent(ctx, e))
	}

	active, err := r.lottery.ListActive(ctx, now)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "sooner", active[0].ID)
	assert.Equal(t, "later", active[1].ID)

	_, err = r.lottery.GetEvent(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
