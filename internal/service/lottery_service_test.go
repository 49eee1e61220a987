package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questionnaire-api/internal/domain"
)

func addEvent(t *testing.T, r testRepos, id string, cost int64, end time.Time, maxParticipants *int) {
	t.Helper()
	require.NoError(t, r.lottery.CreateEvent(context.Background(), &domain.LotteryEvent{
		ID:               id,
		Title:            "Draw " + id,
		EntryCost:        cost,
		PrizeDescription: "Gift card",
		MaxParticipants:  maxParticipants,
		EndDate:          end,
		Status:           domain.LotteryStatusActive,
	}))
}

func TestLotteryEnter(t *testing.T) {
	r := newTestRepos(t)
	svc := NewLotteryService(r.lottery, r.users)
	ctx := context.Background()
	r.addUser(t, "u1", 100)
	addEvent(t, r, "abc", 40, time.Now().Add(24*time.Hour), nil)

	res, err := svc.Enter(ctx, "abc", "u1")
	require.NoError(t, err)
	assert.Equal(t, "abc", res.EventID)
	assert.Equal(t, int64(40), res.PointsSpent)
	assert.NotEmpty(t, res.EntryID)
	assert.Equal(t, "Successfully entered lottery", res.Message)

	user, err := r.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(60), user.Points)

	_, err = svc.Enter(ctx, "abc", "u1")
	assert.ErrorIs(t, err, ErrAlreadyEntered)
}

func TestLotteryEnterRejections(t *testing.T) {
	r := newTestRepos(t)
	svc := NewLotteryService(r.lottery, r.users)
	ctx := context.Background()
	r.addUser(t, "poor", 5)
	r.addUser(t, "rich", 500)
	r.addUser(t, "other", 500)
	future := time.Now().Add(time.Hour)
	addEvent(t, r, "pricey", 50, future, nil)
	addEvent(t, r, "ended", 1, time.Now().Add(-time.Hour), nil)
	addEvent(t, r, "tiny", 1, future, intPtr(1))

	_, err := svc.Enter(ctx, "pricey", "poor")
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	_, err = svc.Enter(ctx, "ended", "rich")
	assert.ErrorIs(t, err, ErrEventClosed)

	_, err = svc.Enter(ctx, "missing", "rich")
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = svc.Enter(ctx, "pricey", "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Enter(ctx, "tiny", "rich")
	require.NoError(t, err)
	_, err = svc.Enter(ctx, "tiny", "other")
	assert.ErrorIs(t, err, ErrEventFull)

	poor, err := r.users.GetByID(ctx, "poor")
	require.NoError(t, err)
	assert.Equal(t, int64(5), poor.Points)
}

func TestLotteryListActive(t *testing.T) {
	r := newTestRepos(t)
	svc := NewLotteryService(r.lottery, r.users)
	now := time.Now()
	addEvent(t, r, "later", 1, now.Add(48*time.Hour), nil)
	addEvent(t, r, "sooner", 1, now.Add(time.Hour), nil)
	addEvent(t, r, "past", 1, now.Add(-time.Hour), nil)

	events, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "sooner", events[0].ID)
	assert.Equal(t, "later", events[1].ID)
}
