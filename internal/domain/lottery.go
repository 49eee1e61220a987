package domain

import "time"

type LotteryStatus string

const (
	LotteryStatusActive LotteryStatus = "active"
	LotteryStatusClosed LotteryStatus = "closed"
)

// LotteryEvent is a prize draw users can buy into with points.
type LotteryEvent struct {
	ID                  string
	Title               string
	Description         string
	EntryCost           int64
	PrizeDescription    string
	MaxParticipants     *int
	CurrentParticipants int
	EndDate             time.Time
	Status              LotteryStatus
}

// Open reports whether the event still accepts entries at now.
func (e *LotteryEvent) Open(now time.Time) bool {
	return e.Status == LotteryStatusActive && now.Before(e.EndDate)
}

// Full reports whether the participant cap has been reached.
func (e *LotteryEvent) Full() bool {
	return e.MaxParticipants != nil && e.CurrentParticipants >= *e.MaxParticipants
}

type LotteryEntry struct {
	ID        string
	EventID   string
	UserID    string
	EnteredAt time.Time
}
