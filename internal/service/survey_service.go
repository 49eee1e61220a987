package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/repository"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	minChoices      = 2
	ratingMin       = 1
	ratingMax       = 5

	// MaxRewardPoints caps the per-response reward a survey may offer.
	MaxRewardPoints = 1_000_000
)

type QuestionInput struct {
	Text       string
	Type       domain.QuestionType
	Options    []string
	IsRequired bool
}

type CreateSurveyInput struct {
	Title         string
	Description   string
	CategoryID    *int64
	RewardPoints  int64
	MaxResponses  *int
	IsDataForSale bool
	DataPrice     int64
	Questions     []QuestionInput
}

type CreateSurveyResult struct {
	ID      string
	Message string
}

type SubmitResult struct {
	ID           string
	PointsEarned int64
	Message      string
}

// SurveyService coordinates survey level operations backed by repositories.
type SurveyService interface {
	List(ctx context.Context, filter repository.SurveyFilter) ([]domain.Survey, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, in CreateSurveyInput, creatorID string) (*CreateSurveyResult, error)
	Get(ctx context.Context, id string) (*domain.Survey, error)
	SubmitResponse(ctx context.Context, surveyID string, answers domain.Answers, respondentID string) (*SubmitResult, error)
}

type surveyService struct {
	surveys   repository.SurveyRepository
	responses repository.ResponseRepository
	users     repository.UserRepository
	validate  *validator.Validate
}

func NewSurveyService(surveys repository.SurveyRepository, responses repository.ResponseRepository, users repository.UserRepository) SurveyService {
	return &surveyService{
		surveys:   surveys,
		responses: responses,
		users:     users,
		validate:  validator.New(),
	}
}

func (s *surveyService) List(ctx context.Context, filter repository.SurveyFilter) ([]domain.Survey, error) {
	if filter.Skip < 0 {
		return nil, errors.New("skip must not be negative")
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultPageSize
	case filter.Limit > MaxPageSize:
		filter.Limit = MaxPageSize
	}
	return s.surveys.List(ctx, filter)
}

func (s *surveyService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.surveys.ListCategories(ctx)
}

func (s *surveyService) Create(ctx context.Context, in CreateSurveyInput, creatorID string) (*CreateSurveyResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidSurvey)
	}
	if in.RewardPoints < 0 {
		return nil, fmt.Errorf("%w: reward points must not be negative", ErrInvalidSurvey)
	}
	if in.RewardPoints > MaxRewardPoints {
		return nil, fmt.Errorf("%w: reward points must be at most %d", ErrInvalidSurvey, MaxRewardPoints)
	}
	if in.DataPrice < 0 {
		return nil, fmt.Errorf("%w: data price must not be negative", ErrInvalidSurvey)
	}
	if in.MaxResponses != nil && *in.MaxResponses <= 0 {
		return nil, fmt.Errorf("%w: max responses must be positive", ErrInvalidSurvey)
	}
	if in.MaxResponses != nil && in.RewardPoints > 0 && int64(*in.MaxResponses) > math.MaxInt64/in.RewardPoints {
		return nil, fmt.Errorf("%w: total budget is too large", ErrInvalidSurvey)
	}
	if len(in.Questions) == 0 {
		return nil, fmt.Errorf("%w: at least one question is required", ErrInvalidSurvey)
	}
	if in.CategoryID != nil {
		ok, err := s.surveys.CategoryExists(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %d", ErrInvalidSurvey, *in.CategoryID)
		}
	}

	survey := &domain.Survey{
		ID:            uuid.NewString(),
		CreatorID:     creatorID,
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		CategoryID:    in.CategoryID,
		RewardPoints:  in.RewardPoints,
		MaxResponses:  in.MaxResponses,
		Status:        domain.SurveyStatusActive,
		IsDataForSale: in.IsDataForSale,
		DataPrice:     in.DataPrice,
	}
	if in.MaxResponses != nil {
		survey.TotalBudget = in.RewardPoints * int64(*in.MaxResponses)
	}

	for i, q := range in.Questions {
		question, err := buildQuestion(i, q)
		if err != nil {
			return nil, err
		}
		question.SurveyID = survey.ID
		survey.Questions = append(survey.Questions, question)
	}

	if err := s.surveys.Create(ctx, survey); err != nil {
		return nil, err
	}
	return &CreateSurveyResult{ID: survey.ID, Message: "Survey created successfully"}, nil
}

func buildQuestion(index int, in QuestionInput) (domain.Question, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return domain.Question{}, fmt.Errorf("%w: question %d has no text", ErrInvalidSurvey, index+1)
	}
	if !in.Type.Valid() {
		return domain.Question{}, fmt.Errorf("%w: question %d has unknown type %q", ErrInvalidSurvey, index+1, in.Type)
	}

	var options []string
	if in.Type.HasOptions() {
		seen := make(map[string]struct{}, len(in.Options))
		for _, o := range in.Options {
			o = strings.TrimSpace(o)
			if o == "" {
				continue
			}
			if _, dup := seen[o]; dup {
				return domain.Question{}, fmt.Errorf("%w: question %d repeats option %q", ErrInvalidSurvey, index+1, o)
			}
			seen[o] = struct{}{}
			options = append(options, o)
		}
		if len(options) < minChoices {
			return domain.Question{}, fmt.Errorf("%w: question %d needs at least %d options", ErrInvalidSurvey, index+1, minChoices)
		}
	}

	return domain.Question{
		ID:         uuid.NewString(),
		Text:       text,
		Type:       in.Type,
		Options:    options,
		IsRequired: in.IsRequired,
		OrderIndex: index,
	}, nil
}

func (s *surveyService) Get(ctx context.Context, id string) (*domain.Survey, error) {
	survey, err := s.surveys.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}
	return survey, nil
}

func (s *surveyService) SubmitResponse(ctx context.Context, surveyID string, answers domain.Answers, respondentID string) (*SubmitResult, error) {
	if err := answers.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAnswer, err)
	}

	survey, err := s.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if survey.Status != domain.SurveyStatusActive || survey.Full() {
		return nil, ErrSurveyClosed
	}
	if survey.CreatorID == respondentID {
		return nil, ErrOwnSurvey
	}

	user, err := s.users.GetByID(ctx, respondentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.IsBanned {
		return nil, ErrUserBanned
	}

	answered, err := s.responses.Exists(ctx, surveyID, respondentID)
	if err != nil {
		return nil, err
	}
	if answered {
		return nil, ErrAlreadyResponded
	}

	if err := s.checkAnswers(survey, answers); err != nil {
		return nil, err
	}

	resp := &domain.SurveyResponse{
		ID:           uuid.NewString(),
		SurveyID:     surveyID,
		RespondentID: respondentID,
		Answers:      answers,
	}
	if err := s.responses.Submit(ctx, resp, survey.RewardPoints); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrAlreadyResponded
		case errors.Is(err, repository.ErrCapacityReached):
			return nil, ErrSurveyClosed
		}
		return nil, err
	}

	return &SubmitResult{
		ID:           resp.ID,
		PointsEarned: survey.RewardPoints,
		Message:      "Response submitted successfully",
	}, nil
}

// checkAnswers validates every answer against the question it targets.
func (s *surveyService) checkAnswers(survey *domain.Survey, answers domain.Answers) error {
	known := make(map[string]struct{}, len(survey.Questions))
	for _, q := range survey.Questions {
		known[q.ID] = struct{}{}
		value, ok := answers[q.ID]
		if !ok || value.IsEmpty() {
			if q.IsRequired {
				return fmt.Errorf("%w: question %q is required", ErrInvalidAnswer, q.Text)
			}
			continue
		}
		if err := s.checkAnswer(q, value); err != nil {
			return fmt.Errorf("%w: question %q: %w", ErrInvalidAnswer, q.Text, err)
		}
	}
	for id := range answers {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: unknown question %q", ErrInvalidAnswer, id)
		}
	}
	return nil
}

func (s *surveyService) checkAnswer(q domain.Question, value domain.AnswerValue) error {
	switch q.Type {
	case domain.QuestionMultipleChoice, domain.QuestionDropdown:
		choice, ok := value.Text()
		if !ok {
			return errors.New("expected a single option")
		}
		return checkOption(q.Options, choice)
	case domain.QuestionCheckbox:
		choices, ok := value.List()
		if !ok {
			return errors.New("expected a list of options")
		}
		for _, c := range choices {
			if err := checkOption(q.Options, c); err != nil {
				return err
			}
		}
		return nil
	case domain.QuestionRating:
		n, ok := value.Number()
		if !ok || n != math.Trunc(n) || n < ratingMin || n > ratingMax {
			return fmt.Errorf("expected a whole number between %d and %d", ratingMin, ratingMax)
		}
		return nil
	case domain.QuestionNumber:
		if _, ok := value.Number(); !ok {
			return errors.New("expected a number")
		}
		return nil
	case domain.QuestionEmail:
		addr, ok := value.Text()
		if !ok || s.validate.Var(addr, "email") != nil {
			return errors.New("expected an email address")
		}
		return nil
	case domain.QuestionDate:
		d, ok := value.Text()
		if !ok {
			return errors.New("expected a date")
		}
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return errors.New("expected a date formatted YYYY-MM-DD")
		}
		return nil
	default:
		if _, ok := value.Text(); !ok {
			return errors.New("expected text")
		}
		return nil
	}
}

func checkOption(options []string, choice string) error {
	for _, o := range options {
		if o == choice {
			return nil
		}
	}
	return fmt.Errorf("%q is not one of the options", choice)
}
