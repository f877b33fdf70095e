package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfqs/ticket-system/internal/domain"
	apperrors "github.com/sfqs/ticket-system/pkg/util/errorutil"
)

const engEmail = "eng@sfqs.local"

func newEngineer(email string) *domain.User {
	return &domain.User{Email: email, Name: "Eng", Role: domain.RoleEngineer, Status: domain.UserStatusActive, Level: 1}
}

func TestExperienceRefreshRecomputesAndWrites(t *testing.T) {
	users := newFakeUsers(newEngineer(engEmail))
	tickets := newFakeTickets(
		resolvedTicket(engEmail, domain.TicketPriorityHigh),
		resolvedTicket(engEmail, domain.TicketPriorityMedium),
		resolvedTicket(engEmail, domain.TicketPriorityLow),
		resolvedTicket(engEmail, domain.TicketPriorityHigh),
		resolvedTicket("other@sfqs.local", domain.TicketPriorityHigh),
	)
	svc := NewExperienceService(users, tickets, nil, nil)

	view, err := svc.Get(context.Background(), engEmail, true)
	require.NoError(t, err)
	assert.Equal(t, 18, view.Experience)
	assert.Equal(t, 4, view.TicketsSolved)
	assert.Equal(t, 1, view.Level)
	assert.True(t, view.Written)
	require.NotNil(t, view.NextLevelAt)
	assert.Equal(t, 20, *view.NextLevelAt)

	stored := users.byEmail(engEmail)
	assert.Equal(t, 18, stored.Experience)
	assert.Equal(t, 4, stored.TicketsSolved)
	assert.Equal(t, 1, users.updateExp)

	again, err := svc.Refresh(context.Background(), engEmail)
	require.NoError(t, err)
	assert.False(t, again.Written)
	assert.Equal(t, 18, again.Experience)
	assert.Equal(t, 1, users.updateExp)
}

func TestExperienceWithoutRefreshReturnsStored(t *testing.T) {
	eng := newEngineer(engEmail)
	eng.Experience = 55
	eng.Level = 3
	eng.TicketsSolved = 11
	users := newFakeUsers(eng)
	svc := NewExperienceService(users, newFakeTickets(), nil, nil)

	view, err := svc.Get(context.Background(), engEmail, false)
	require.NoError(t, err)
	assert.Equal(t, 55, view.Experience)
	assert.Equal(t, 3, view.Level)
	assert.Equal(t, 0, users.updateExp)
}

func TestExperienceRewritesWhenOnlyLevelDiffers(t *testing.T) {
	eng := newEngineer(engEmail)
	eng.Experience = 6
	eng.TicketsSolved = 1
	eng.Level = 4
	users := newFakeUsers(eng)
	tickets := newFakeTickets(resolvedTicket(engEmail, domain.TicketPriorityHigh))
	svc := NewExperienceService(users, tickets, nil, nil)

	view, err := svc.Refresh(context.Background(), engEmail)
	require.NoError(t, err)
	assert.True(t, view.Written)
	assert.Equal(t, 1, users.byEmail(engEmail).Level)
}

func TestExperienceUnknownPriorityScoresAsLow(t *testing.T) {
	users := newFakeUsers(newEngineer(engEmail))
	tickets := newFakeTickets(resolvedTicket(engEmail, domain.TicketPriority("Urgente")))
	svc := NewExperienceService(users, tickets, nil, nil)

	view, err := svc.Refresh(context.Background(), engEmail)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Experience)
}

func TestExperienceLookupFailureDoesNotWrite(t *testing.T) {
	eng := newEngineer(engEmail)
	eng.Experience = 40
	eng.Level = 2
	eng.TicketsSolved = 8
	users := newFakeUsers(eng)
	tickets := newFakeTickets()
	tickets.resolvedErr = errors.New("connection reset")
	svc := NewExperienceService(users, tickets, nil, nil)

	_, err := svc.Refresh(context.Background(), engEmail)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "EXPERIENCE_RECOMPUTE_FAILED"))
	assert.Equal(t, 0, users.updateExp)
	stored := users.byEmail(engEmail)
	assert.Equal(t, 40, stored.Experience)
	assert.Equal(t, 8, stored.TicketsSolved)
}

func TestExperienceUserLookupFailure(t *testing.T) {
	users := newFakeUsers()
	users.getErr = errors.New("timeout")
	svc := NewExperienceService(users, newFakeTickets(), nil, nil)

	_, err := svc.Refresh(context.Background(), engEmail)
	assert.True(t, apperrors.IsCode(err, "EXPERIENCE_RECOMPUTE_FAILED"))

	_, err = svc.Get(context.Background(), engEmail, false)
	assert.True(t, apperrors.IsCode(err, "INTERNAL_ERROR"))
}

func TestExperienceWriteFailureSurfaces(t *testing.T) {
	users := newFakeUsers(newEngineer(engEmail))
	users.updateExErr = errors.New("read only")
	tickets := newFakeTickets(resolvedTicket(engEmail, domain.TicketPriorityLow))
	svc := NewExperienceService(users, tickets, nil, nil)

	_, err := svc.Refresh(context.Background(), engEmail)
	assert.True(t, apperrors.IsCode(err, "EXPERIENCE_RECOMPUTE_FAILED"))
}

func TestExperienceRejectsUnknownAndNonEngineers(t *testing.T) {
	users := newFakeUsers(&domain.User{Email: "sup@sfqs.local", Role: domain.RoleSupervisor, Status: domain.UserStatusActive})
	svc := NewExperienceService(users, newFakeTickets(), nil, nil)

	_, err := svc.Get(context.Background(), "missing@sfqs.local", true)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	_, err = svc.Get(context.Background(), "sup@sfqs.local", true)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestExperienceReconcileAll(t *testing.T) {
	users := newFakeUsers(newEngineer(engEmail), newEngineer("idle@sfqs.local"))
	tickets := newFakeTickets(resolvedTicket(engEmail, domain.TicketPriorityMedium))
	svc := NewExperienceService(users, tickets, nil, nil)

	updated, err := svc.ReconcileAll(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Equal(t, 4, users.byEmail(engEmail).Experience)

	updated, err = svc.ReconcileAll(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}

func TestExperienceReconcileAllPagesEveryEngineer(t *testing.T) {
	users := newFakeUsers()
	tickets := newFakeTickets()
	var emails []string
	for i := 0; i < 5; i++ {
		email := fmt.Sprintf("eng%d@sfqs.local", i)
		engineer := newEngineer(email)
		// drifted from the ticket history
		engineer.Experience = 100 - i
		require.NoError(t, users.Create(context.Background(), engineer))
		require.NoError(t, tickets.Create(context.Background(), resolvedTicket(email, domain.TicketPriorityLow)))
		emails = append(emails, email)
	}
	svc := NewExperienceService(users, tickets, nil, nil)

	updated, err := svc.ReconcileAll(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 5, updated)
	for _, email := range emails {
		assert.Equal(t, 2, users.byEmail(email).Experience, email)
	}
}

func TestExperienceLeaderboard(t *testing.T) {
	top := newEngineer("top@sfqs.local")
	top.Experience = 120
	top.Level = 4
	users := newFakeUsers(newEngineer(engEmail), top)
	svc := NewExperienceService(users, newFakeTickets(), nil, nil)

	board, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "top@sfqs.local", board[0].Email)
	require.NotNil(t, board[0].NextLevelAt)
	assert.Equal(t, 175, *board[0].NextLevelAt)
}
