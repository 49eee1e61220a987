package domain

import "time"

// AuthenticatedUser is the identity resolved from a bearer token for the
// lifetime of a single request.
type AuthenticatedUser struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

// Session is what the identity provider hands back after sign-up or sign-in.
type Session struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	TokenType    string            `json:"token_type"`
	ExpiresIn    int               `json:"expires_in"`
	User         AuthenticatedUser `json:"user"`
}

// User is the platform profile stored alongside an identity.
type User struct {
	ID               string
	Email            string
	Username         string
	Points           int64
	IsBanned         bool
	Gender           string
	BirthDate        string
	ProfileCompleted bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type TransactionType string

const (
	TransactionSurveyReward TransactionType = "survey_reward"
	TransactionLotteryEntry TransactionType = "lottery_entry"
)

// PointTransaction is one ledger movement on a user's point balance.
// Amount is positive for credits and negative for debits.
type PointTransaction struct {
	ID          string
	UserID      string
	Amount      int64
	Type        TransactionType
	RelatedID   string
	Description string
	CreatedAt   time.Time
}
