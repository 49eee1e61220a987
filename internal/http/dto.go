package http

import (
	"time"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/storage"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Username string `json:"username" binding:"omitempty,max=50"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type questionRequest struct {
	Text       string              `json:"question_text" binding:"required"`
	Type       domain.QuestionType `json:"question_type" binding:"required"`
	Options    []string            `json:"options"`
	IsRequired bool                `json:"is_required"`
}

type createSurveyRequest struct {
	Title         string            `json:"title" binding:"required"`
	Description   string            `json:"description"`
	CategoryID    *int64            `json:"category_id"`
	RewardPoints  int64             `json:"reward_points" binding:"min=0,max=1000000"`
	MaxResponses  *int              `json:"max_responses"`
	IsDataForSale bool              `json:"is_data_for_sale"`
	DataPrice     int64             `json:"data_price" binding:"min=0"`
	Questions     []questionRequest `json:"questions" binding:"required,min=1,dive"`
}

type submitResponseRequest struct {
	Responses domain.Answers `json:"responses" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	User         ProfileResponse `json:"user"`
}

type ProfileResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Username         string `json:"username"`
	Points           int64  `json:"points"`
	IsBanned         bool   `json:"is_banned"`
	Gender           string `json:"gender,omitempty"`
	BirthDate        string `json:"birth_date,omitempty"`
	ProfileCompleted bool   `json:"profile_completed"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

type TransactionResponse struct {
	ID              string                 `json:"id"`
	Amount          int64                  `json:"amount"`
	TransactionType domain.TransactionType `json:"transaction_type"`
	RelatedID       string                 `json:"related_id,omitempty"`
	Description     string                 `json:"description"`
	CreatedAt       string                 `json:"created_at"`
}

type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type SurveySummaryResponse struct {
	ID               string              `json:"id"`
	CreatorID        string              `json:"creator_id"`
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	CategoryID       *int64              `json:"category_id"`
	RewardPoints     int64               `json:"reward_points"`
	MaxResponses     *int                `json:"max_responses"`
	CurrentResponses int                 `json:"current_responses"`
	Status           domain.SurveyStatus `json:"status"`
	CreatedAt        string              `json:"created_at"`
}

type QuestionResponse struct {
	ID         string              `json:"id"`
	Text       string              `json:"question_text"`
	Type       domain.QuestionType `json:"question_type"`
	Options    []string            `json:"options"`
	IsRequired bool                `json:"is_required"`
	OrderIndex int                 `json:"order_index"`
}

type SurveyResponse struct {
	SurveySummaryResponse
	TotalBudget   int64              `json:"total_budget"`
	IsDataForSale bool               `json:"is_data_for_sale"`
	DataPrice     int64              `json:"data_price"`
	Questions     []QuestionResponse `json:"questions"`
}

type CreateSurveyResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type SubmitResponseResponse struct {
	ID           string `json:"id"`
	PointsEarned int64  `json:"points_earned"`
	Message      string `json:"message"`
}

type DashboardResponse struct {
	Points             int64                 `json:"points"`
	SurveysCreated     int                   `json:"surveys_created"`
	ResponsesReceived  int                   `json:"responses_received"`
	ResponsesSubmitted int                   `json:"responses_submitted"`
	PointsEarned       int64                 `json:"points_earned"`
	PointsSpent        int64                 `json:"points_spent"`
	RecentTransactions []TransactionResponse `json:"recent_transactions"`
}

type QuestionStatsResponse struct {
	QuestionID    string              `json:"question_id"`
	Text          string              `json:"question_text"`
	Type          domain.QuestionType `json:"question_type"`
	ResponseCount int                 `json:"response_count"`
	OptionCounts  map[string]int      `json:"option_counts,omitempty"`
	Average       *float64            `json:"average,omitempty"`
	Min           *float64            `json:"min,omitempty"`
	Max           *float64            `json:"max,omitempty"`
	Samples       []string            `json:"samples,omitempty"`
}

type VisualizationResponse struct {
	SurveyID       string                  `json:"survey_id"`
	Title          string                  `json:"title"`
	TotalResponses int                     `json:"total_responses"`
	Questions      []QuestionStatsResponse `json:"questions"`
}

type ExportResponse struct {
	Key       string `json:"key"`
	Location  string `json:"location"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

type LotteryEventResponse struct {
	ID                  string               `json:"id"`
	Title               string               `json:"title"`
	Description         string               `json:"description"`
	EntryCost           int64                `json:"entry_cost"`
	PrizeDescription    string               `json:"prize_description"`
	MaxParticipants     *int                 `json:"max_participants"`
	CurrentParticipants int                  `json:"current_participants"`
	EndDate             string               `json:"end_date"`
	Status              domain.LotteryStatus `json:"status"`
}

type EnterLotteryResponse struct {
	EntryID     string `json:"entry_id"`
	EventID     string `json:"event_id"`
	PointsSpent int64  `json:"points_spent"`
	Message     string `json:"message"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func profileToResponse(u domain.User) ProfileResponse {
	return ProfileResponse{
		ID:               u.ID,
		Email:            u.Email,
		Username:         u.Username,
		Points:           u.Points,
		IsBanned:         u.IsBanned,
		Gender:           u.Gender,
		BirthDate:        u.BirthDate,
		ProfileCompleted: u.ProfileCompleted,
		CreatedAt:        formatTime(u.CreatedAt),
		UpdatedAt:        formatTime(u.UpdatedAt),
	}
}

func transactionsToResponse(txs []domain.PointTransaction) []TransactionResponse {
	resp := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = TransactionResponse{
			ID:              tx.ID,
			Amount:          tx.Amount,
			TransactionType: tx.Type,
			RelatedID:       tx.RelatedID,
			Description:     tx.Description,
			CreatedAt:       formatTime(tx.CreatedAt),
		}
	}
	return resp
}

func summaryToResponse(s domain.Survey) SurveySummaryResponse {
	return SurveySummaryResponse{
		ID:               s.ID,
		CreatorID:        s.CreatorID,
		Title:            s.Title,
		Description:      s.Description,
		CategoryID:       s.CategoryID,
		RewardPoints:     s.RewardPoints,
		MaxResponses:     s.MaxResponses,
		CurrentResponses: s.CurrentResponses,
		Status:           s.Status,
		CreatedAt:        formatTime(s.CreatedAt),
	}
}

func surveyToResponse(s domain.Survey) SurveyResponse {
	resp := SurveyResponse{
		SurveySummaryResponse: summaryToResponse(s),
		TotalBudget:           s.TotalBudget,
		IsDataForSale:         s.IsDataForSale,
		DataPrice:             s.DataPrice,
		Questions:             make([]QuestionResponse, len(s.Questions)),
	}
	for i, q := range s.Questions {
		options := q.Options
		if options == nil {
			options = []string{}
		}
		resp.Questions[i] = QuestionResponse{
			ID:         q.ID,
			Text:       q.Text,
			Type:       q.Type,
			Options:    options,
			IsRequired: q.IsRequired,
			OrderIndex: q.OrderIndex,
		}
	}
	return resp
}

func visualizationToResponse(v domain.SurveyVisualization) VisualizationResponse {
	resp := VisualizationResponse{
		SurveyID:       v.SurveyID,
		Title:          v.Title,
		TotalResponses: v.TotalResponses,
		Questions:      make([]QuestionStatsResponse, len(v.Questions)),
	}
	for i, q := range v.Questions {
		resp.Questions[i] = QuestionStatsResponse{
			QuestionID:    q.QuestionID,
			Text:          q.Text,
			Type:          q.Type,
			ResponseCount: q.ResponseCount,
			OptionCounts:  q.OptionCounts,
			Average:       q.Average,
			Min:           q.Min,
			Max:           q.Max,
			Samples:       q.Samples,
		}
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}

func eventToResponse(e domain.LotteryEvent) LotteryEventResponse {
	return LotteryEventResponse{
		ID:                  e.ID,
		Title:               e.Title,
		Description:         e.Description,
		EntryCost:           e.EntryCost,
		PrizeDescription:    e.PrizeDescription,
		MaxParticipants:     e.MaxParticipants,
		CurrentParticipants: e.CurrentParticipants,
		EndDate:             formatTime(e.EndDate),
		Status:              e.Status,
	}
}
