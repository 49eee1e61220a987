package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/storage"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string]string
	listed  []storage.ObjectInfo
	fail    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string]string{}}
}

func (m *memoryStore) Upload(_ context.Context, obj storage.Object) (string, error) {
	if m.fail != nil {
		return "", m.fail
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[obj.Key] = string(data)
	return "s3://bucket/" + obj.Key, nil
}

func (m *memoryStore) ListObjects(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for _, o := range m.listed {
		if strings.HasPrefix(o.Key, prefix) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memoryStore) GetObjectURL(_ context.Context, key string, expires time.Duration) (string, error) {
	return "https://signed.example/" + key + "?expires=" + expires.String(), nil
}

func newAnalyticsService(r testRepos, store storage.Service) AnalyticsService {
	return NewAnalyticsService(r.users, r.surveys, r.responses, r.ledger, store, ExportConfig{KeyPrefix: "/exports/", URLExpiry: 10 * time.Minute})
}

// seedResponses creates a survey owned by "creator" with answers from two respondents.
func seedResponses(t *testing.T, r testRepos) *domain.Survey {
	t.Helper()
	surveys := newSurveyService(r)
	r.addUser(t, "creator", 0)
	r.addUser(t, "alice", 0)
	r.addUser(t, "bob", 0)
	survey := createSampleSurvey(t, surveys, "creator", 20, nil)
	q := survey.Questions
	ctx := context.Background()

	_, err := surveys.SubmitResponse(ctx, survey.ID, domain.Answers{
		q[0].ID: domain.TextAnswer("Lunch"),
		q[1].ID: domain.ListAnswer([]string{"Tennis", "Rowing"}),
		q[2].ID: domain.NumberAnswer(5),
		q[6].ID: domain.TextAnswer("Great, thanks"),
	}, "alice")
	require.NoError(t, err)
	_, err = surveys.SubmitResponse(ctx, survey.ID, domain.Answers{
		q[0].ID: domain.TextAnswer("Lunch"),
		q[1].ID: domain.ListAnswer([]string{"Tennis"}),
		q[2].ID: domain.NumberAnswer(2),
	}, "bob")
	require.NoError(t, err)
	return survey
}

func TestDashboard(t *testing.T) {
	r := newTestRepos(t)
	seedResponses(t, r)
	svc := newAnalyticsService(r, nil)
	ctx := context.Background()

	creator, err := svc.Dashboard(ctx, "creator")
	require.NoError(t, err)
	assert.Equal(t, 1, creator.SurveysCreated)
	assert.Equal(t, 2, creator.ResponsesReceived)
	assert.Equal(t, 0, creator.ResponsesSubmitted)
	assert.Empty(t, creator.RecentTransactions)

	alice, err := svc.Dashboard(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(20), alice.Points)
	assert.Equal(t, 1, alice.ResponsesSubmitted)
	assert.Equal(t, int64(20), alice.PointsEarned)
	assert.Equal(t, int64(0), alice.PointsSpent)
	require.Len(t, alice.RecentTransactions, 1)
	assert.Equal(t, domain.TransactionSurveyReward, alice.RecentTransactions[0].Type)

	_, err = svc.Dashboard(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSurveyVisualization(t *testing.T) {
	r := newTestRepos(t)
	survey := seedResponses(t, r)
	svc := newAnalyticsService(r, nil)
	ctx := context.Background()

	_, err := svc.SurveyVisualization(ctx, survey.ID, "alice")
	assert.ErrorIs(t, err, ErrNotSurveyOwner)
	_, err = svc.SurveyVisualization(ctx, "missing", "creator")
	assert.ErrorIs(t, err, ErrSurveyNotFound)

	vis, err := svc.SurveyVisualization(ctx, survey.ID, "creator")
	require.NoError(t, err)
	assert.Equal(t, 2, vis.TotalResponses)
	require.Len(t, vis.Questions, 7)

	choice := vis.Questions[0]
	assert.Equal(t, 2, choice.ResponseCount)
	assert.Equal(t, map[string]int{"Breakfast": 0, "Lunch": 2, "Dinner": 0}, choice.OptionCounts)

	checkbox := vis.Questions[1]
	assert.Equal(t, map[string]int{"Tennis": 2, "Rowing": 1}, checkbox.OptionCounts)

	rating := vis.Questions[2]
	require.NotNil(t, rating.Average)
	assert.InDelta(t, 3.5, *rating.Average, 1e-9)
	assert.Equal(t, 2.0, *rating.Min)
	assert.Equal(t, 5.0, *rating.Max)

	email := vis.Questions[3]
	assert.Zero(t, email.ResponseCount)
	assert.Nil(t, email.Average)

	text := vis.Questions[6]
	assert.Equal(t, 1, text.ResponseCount)
	assert.Equal(t, []string{"Great, thanks"}, text.Samples)
}

func TestExportResponses(t *testing.T) {
	r := newTestRepos(t)
	survey := seedResponses(t, r)
	store := newMemoryStore()
	svc := newAnalyticsService(r, store)
	ctx := context.Background()

	_, err := svc.ExportResponses(ctx, survey.ID, "bob")
	assert.ErrorIs(t, err, ErrNotSurveyOwner)

	before := time.Now().UTC()
	export, err := svc.ExportResponses(ctx, survey.ID, "creator")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(export.Key, "exports/surveys/"+survey.ID+"/"))
	assert.True(t, strings.HasSuffix(export.Key, ".csv"))
	assert.Equal(t, "s3://bucket/"+export.Key, export.Location)
	assert.Equal(t, "https://signed.example/"+export.Key+"?expires=10m0s", export.URL)
	assert.False(t, export.ExpiresAt.Before(before.Add(10*time.Minute)))

	body := store.objects[export.Key]
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "response_id,respondent_id,submitted_at,Favourite meal,Sports,Rate the library,Contact,Arrival,Hours studied,Anything else", lines[0])
	assert.Contains(t, body, ",Lunch,Tennis; Rowing,5,,,,\"Great, thanks\"")
}

func TestExportResponsesUploadFailure(t *testing.T) {
	r := newTestRepos(t)
	survey := seedResponses(t, r)
	store := newMemoryStore()
	store.fail = errors.New("bucket unreachable")
	svc := newAnalyticsService(r, store)

	_, err := svc.ExportResponses(context.Background(), survey.ID, "creator")
	assert.EqualError(t, err, "bucket unreachable")
}

func TestExportsUnavailableWithoutStorage(t *testing.T) {
	r := newTestRepos(t)
	survey := seedResponses(t, r)
	svc := newAnalyticsService(r, nil)

	_, err := svc.ExportResponses(context.Background(), survey.ID, "creator")
	assert.ErrorIs(t, err, ErrExportUnavailable)
	_, err = svc.ListExports(context.Background(), survey.ID, "creator")
	assert.ErrorIs(t, err, ErrExportUnavailable)
}

func TestListExportsNewestFirst(t *testing.T) {
	r := newTestRepos(t)
	survey := seedResponses(t, r)
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	store := newMemoryStore()
	prefix := "exports/surveys/" + survey.ID + "/"
	store.listed = []storage.ObjectInfo{
		{Key: prefix + "old.csv", LastModified: &older},
		{Key: "exports/surveys/other/x.csv", LastModified: &newer},
		{Key: prefix + "new.csv", LastModified: &newer},
	}
	svc := newAnalyticsService(r, store)

	objects, err := svc.ListExports(context.Background(), survey.ID, "creator")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, prefix+"new.csv", objects[0].Key)
	assert.Equal(t, prefix+"old.csv", objects[1].Key)
}
