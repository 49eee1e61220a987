package domain

import "time"

type SurveyStatus string

const (
	SurveyStatusActive SurveyStatus = "active"
	SurveyStatusClosed SurveyStatus = "closed"
)

type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionTextarea       QuestionType = "textarea"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionCheckbox       QuestionType = "checkbox"
	QuestionRating         QuestionType = "rating"
	QuestionDropdown       QuestionType = "dropdown"
	QuestionDate           QuestionType = "date"
	QuestionEmail          QuestionType = "email"
	QuestionNumber         QuestionType = "number"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionTextarea, QuestionMultipleChoice, QuestionCheckbox,
		QuestionRating, QuestionDropdown, QuestionDate, QuestionEmail, QuestionNumber:
		return true
	}
	return false
}

// HasOptions reports whether answers must be picked from Question.Options.
func (t QuestionType) HasOptions() bool {
	return t == QuestionMultipleChoice || t == QuestionCheckbox || t == QuestionDropdown
}

type Category struct {
	ID          int64
	Name        string
	Slug        string
	Description string
}

// Survey represents a questionnaire published by a creator.
type Survey struct {
	ID               string
	CreatorID        string
	Title            string
	Description      string
	CategoryID       *int64
	RewardPoints     int64
	TotalBudget      int64
	MaxResponses     *int
	CurrentResponses int
	Status           SurveyStatus
	IsDataForSale    bool
	DataPrice        int64
	CreatedAt        time.Time
	Questions        []Question
}

// Full reports whether the survey has reached its response cap.
func (s *Survey) Full() bool {
	return s.MaxResponses != nil && s.CurrentResponses >= *s.MaxResponses
}

// Question is a single prompt within a survey.
type Question struct {
	ID         string
	SurveyID   string
	Text       string
	Type       QuestionType
	Options    []string
	IsRequired bool
	OrderIndex int
}

// SurveyResponse captures one respondent's answers.
type SurveyResponse struct {
	ID           string
	SurveyID     string
	RespondentID string
	Answers      Answers
	SubmittedAt  time.Time
}
