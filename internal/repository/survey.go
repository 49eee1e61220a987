package repository

import (
	"context"

	"questionnaire-api/internal/domain"
)

// SurveyFilter narrows survey listings.
type SurveyFilter struct {
	CategoryID *int64
	Search     string
	Skip       int
	Limit      int
}

// SurveyRepository exposes persistence operations for surveys and their questions.
type SurveyRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, survey *domain.Survey) error
	Get(ctx context.Context, id string) (*domain.Survey, error)
	List(ctx context.Context, filter SurveyFilter) ([]domain.Survey, error)
	CountByCreator(ctx context.Context, creatorID string) (surveys int, responses int, err error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
}

// ResponseRepository stores survey responses.
type ResponseRepository interface {
	Init(ctx context.Context) error
	// Submit stores the response, bumps the survey counter and credits reward
	// points to the respondent atomically.
	Submit(ctx context.Context, resp *domain.SurveyResponse, reward int64) error
	Exists(ctx context.Context, surveyID, respondentID string) (bool, error)
	ListBySurvey(ctx context.Context, surveyID string) ([]domain.SurveyResponse, error)
	CountByRespondent(ctx context.Context, respondentID string) (int, error)
}
