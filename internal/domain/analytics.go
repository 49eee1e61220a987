package domain

import "time"

// Dashboard aggregates a user's activity on the platform.
type Dashboard struct {
	Points             int64
	SurveysCreated     int
	ResponsesReceived  int
	ResponsesSubmitted int
	PointsEarned       int64
	PointsSpent        int64
	RecentTransactions []PointTransaction
}

// SurveyVisualization summarises the answers collected for a survey.
type SurveyVisualization struct {
	SurveyID       string
	Title          string
	TotalResponses int
	Questions      []QuestionStats
}

// QuestionStats summarises the answers to one question. Only the fields that
// apply to the question type are populated.
type QuestionStats struct {
	QuestionID    string
	Text          string
	Type          QuestionType
	ResponseCount int
	OptionCounts  map[string]int
	Average       *float64
	Min           *float64
	Max           *float64
	Samples       []string
}

// Export points at an uploaded survey-response export.
type Export struct {
	Key       string
	Location  string
	URL       string
	ExpiresAt time.Time
}
