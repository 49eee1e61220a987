package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/repository"
	"questionnaire-api/internal/storage"
)

const (
	recentTransactions = 5
	maxTextSamples     = 10
	defaultURLExpiry   = 15 * time.Minute
)

// ExportConfig controls where response exports are written.
type ExportConfig struct {
	KeyPrefix string
	URLExpiry time.Duration
}

// AnalyticsService exposes dashboards, per-survey statistics and exports.
type AnalyticsService interface {
	Dashboard(ctx context.Context, userID string) (*domain.Dashboard, error)
	SurveyVisualization(ctx context.Context, surveyID, userID string) (*domain.SurveyVisualization, error)
	ExportResponses(ctx context.Context, surveyID, userID string) (*domain.Export, error)
	ListExports(ctx context.Context, surveyID, userID string) ([]storage.ObjectInfo, error)
}

type analyticsService struct {
	users     repository.UserRepository
	surveys   repository.SurveyRepository
	responses repository.ResponseRepository
	ledger    repository.LedgerRepository
	store     storage.Service
	exports   ExportConfig
	now       func() time.Time
}

// NewAnalyticsService builds the analytics collaborator. store may be nil, in
// which case exports report ErrExportUnavailable.
func NewAnalyticsService(
	users repository.UserRepository,
	surveys repository.SurveyRepository,
	responses repository.ResponseRepository,
	ledger repository.LedgerRepository,
	store storage.Service,
	exports ExportConfig,
) AnalyticsService {
	if exports.URLExpiry <= 0 {
		exports.URLExpiry = defaultURLExpiry
	}
	exports.KeyPrefix = strings.Trim(exports.KeyPrefix, "/")
	return &analyticsService{
		users:     users,
		surveys:   surveys,
		responses: responses,
		ledger:    ledger,
		store:     store,
		exports:   exports,
		now:       time.Now,
	}
}

func (s *analyticsService) Dashboard(ctx context.Context, userID string) (*domain.Dashboard, error) {
	var dash domain.Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, err := s.users.GetByID(gctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		dash.Points = user.Points
		return nil
	})
	g.Go(func() error {
		created, received, err := s.surveys.CountByCreator(gctx, userID)
		if err != nil {
			return fmt.Errorf("count surveys: %w", err)
		}
		dash.SurveysCreated, dash.ResponsesReceived = created, received
		return nil
	})
	g.Go(func() error {
		submitted, err := s.responses.CountByRespondent(gctx, userID)
		if err != nil {
			return fmt.Errorf("count responses: %w", err)
		}
		dash.ResponsesSubmitted = submitted
		return nil
	})
	g.Go(func() error {
		earned, spent, err := s.ledger.Totals(gctx, userID)
		if err != nil {
			return fmt.Errorf("point totals: %w", err)
		}
		dash.PointsEarned, dash.PointsSpent = earned, spent
		return nil
	})
	g.Go(func() error {
		recent, err := s.ledger.ListByUser(gctx, userID, recentTransactions)
		if err != nil {
			return fmt.Errorf("recent transactions: %w", err)
		}
		dash.RecentTransactions = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dash, nil
}

// ownedSurvey loads a survey and checks that userID created it.
func (s *analyticsService) ownedSurvey(ctx context.Context, surveyID, userID string) (*domain.Survey, error) {
	survey, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}
	if survey.CreatorID != userID {
		return nil, ErrNotSurveyOwner
	}
	return survey, nil
}

func (s *analyticsService) SurveyVisualization(ctx context.Context, surveyID, userID string) (*domain.SurveyVisualization, error) {
	survey, err := s.ownedSurvey(ctx, surveyID, userID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	vis := &domain.SurveyVisualization{
		SurveyID:       survey.ID,
		Title:          survey.Title,
		TotalResponses: len(responses),
		Questions:      make([]domain.QuestionStats, 0, len(survey.Questions)),
	}
	for _, q := range survey.Questions {
		vis.Questions = append(vis.Questions, questionStats(q, responses))
	}
	return vis, nil
}

// questionStats expects responses ordered newest first.
func questionStats(q domain.Question, responses []domain.SurveyResponse) domain.QuestionStats {
	stats := domain.QuestionStats{
		QuestionID: q.ID,
		Text:       q.Text,
		Type:       q.Type,
	}
	if q.Type.HasOptions() {
		stats.OptionCounts = make(map[string]int, len(q.Options))
		for _, o := range q.Options {
			stats.OptionCounts[o] = 0
		}
	}

	var sum float64
	var numbers int
	for _, resp := range responses {
		value, ok := resp.Answers[q.ID]
		if !ok || value.IsEmpty() {
			continue
		}
		stats.ResponseCount++

		switch q.Type {
		case domain.QuestionMultipleChoice, domain.QuestionDropdown:
			if choice, ok := value.Text(); ok {
				stats.OptionCounts[choice]++
			}
		case domain.QuestionCheckbox:
			choices, _ := value.List()
			for _, c := range choices {
				stats.OptionCounts[c]++
			}
		case domain.QuestionRating, domain.QuestionNumber:
			n, ok := value.Number()
			if !ok {
				continue
			}
			sum += n
			numbers++
			if stats.Min == nil || n < *stats.Min {
				stats.Min = float64Ptr(n)
			}
			if stats.Max == nil || n > *stats.Max {
				stats.Max = float64Ptr(n)
			}
		default:
			if len(stats.Samples) < maxTextSamples {
				stats.Samples = append(stats.Samples, value.String())
			}
		}
	}
	if numbers > 0 {
		stats.Average = float64Ptr(sum / float64(numbers))
	}
	return stats
}

func float64Ptr(v float64) *float64 { return &v }

func (s *analyticsService) exportPrefix(surveyID string) string {
	return path.Join(s.exports.KeyPrefix, "surveys", surveyID) + "/"
}

func (s *analyticsService) ExportResponses(ctx context.Context, surveyID, userID string) (*domain.Export, error) {
	if s.store == nil {
		return nil, ErrExportUnavailable
	}
	survey, err := s.ownedSurvey(ctx, surveyID, userID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	body, err := renderCSV(survey, responses)
	if err != nil {
		return nil, fmt.Errorf("render export: %w", err)
	}

	key := s.exportPrefix(surveyID) + uuid.NewString() + ".csv"
	location, err := s.store.Upload(ctx, storage.Object{
		Key:         key,
		ContentType: "text/csv",
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		return nil, err
	}
	url, err := s.store.GetObjectURL(ctx, key, s.exports.URLExpiry)
	if err != nil {
		return nil, err
	}

	return &domain.Export{
		Key:       key,
		Location:  location,
		URL:       url,
		ExpiresAt: s.now().UTC().Add(s.exports.URLExpiry),
	}, nil
}

func (s *analyticsService) ListExports(ctx context.Context, surveyID, userID string) ([]storage.ObjectInfo, error) {
	if s.store == nil {
		return nil, ErrExportUnavailable
	}
	if _, err := s.ownedSurvey(ctx, surveyID, userID); err != nil {
		return nil, err
	}
	objects, err := s.store.ListObjects(ctx, s.exportPrefix(surveyID))
	if err != nil {
		return nil, err
	}
	sort.Slice(objects, func(i, j int) bool {
		a, b := objects[i].LastModified, objects[j].LastModified
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})
	return objects, nil
}

// renderCSV writes one row per response and one column per question.
func renderCSV(survey *domain.Survey, responses []domain.SurveyResponse) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"response_id", "respondent_id", "submitted_at"}
	for _, q := range survey.Questions {
		header = append(header, q.Text)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, resp := range responses {
		row := []string{resp.ID, resp.RespondentID, resp.SubmittedAt.UTC().Format(time.RFC3339)}
		for _, q := range survey.Questions {
			row = append(row, resp.Answers[q.ID].String())
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
