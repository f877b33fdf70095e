package memory

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfqs/ticket-system/internal/domain"
	"github.com/sfqs/ticket-system/internal/repository"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	user := &domain.User{Email: "eng@sfqs.local", Name: "Eng", Role: domain.RoleEngineer, Status: domain.UserStatusActive, Level: 1}
	require.NoError(t, users.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.ErrorIs(t, users.Create(ctx, &domain.User{Email: "eng@sfqs.local"}), ErrDuplicateEmail)

	got, err := users.GetByEmail(ctx, "eng@sfqs.local")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	require.NoError(t, users.UpdateExperience(ctx, domain.EngineerExperience{Email: "eng@sfqs.local", Experience: 60, Level: 3, TicketsSolved: 12}))
	got, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, got.Experience)
	assert.Equal(t, 3, got.Level)
	assert.ErrorIs(t, users.UpdateExperience(ctx, domain.EngineerExperience{Email: "ghost@sfqs.local"}), pgx.ErrNoRows)

	board, err := users.ListEngineersByExperience(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, board, 1)
}

func TestTicketRepositoryFilters(t *testing.T) {
	ctx := context.Background()
	tickets := NewStore().Tickets()
	eng := "eng@sfqs.local"

	first := &domain.Ticket{ExternalKey: "SFQS-A", Fixture: "FX-1", Description: "bent pins", Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusOpen, RequesterEmail: "a@sfqs.local"}
	second := &domain.Ticket{ExternalKey: "SFQS-B", Fixture: "FX-2", Description: "no power", Priority: domain.TicketPriorityLow, Status: domain.TicketStatusOpen, RequesterEmail: "b@sfqs.local"}
	require.NoError(t, tickets.Create(ctx, first))
	require.NoError(t, tickets.Create(ctx, second))

	guard := repository.GuardOf(second)
	resolvedAt := time.Now()
	second.Status = domain.TicketStatusResolved
	second.EngineerEmail = &eng
	second.ResolvedAt = &resolvedAt
	require.NoError(t, tickets.Update(ctx, second, guard))

	requester := "a@sfqs.local"
	own, err := tickets.List(ctx, repository.TicketFilter{RequesterEmail: &requester})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, first.ID, own[0].ID)

	term := "POWER"
	found, err := tickets.List(ctx, repository.TicketFilter{SearchTerm: &term})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, second.ID, found[0].ID)

	high, err := tickets.List(ctx, repository.TicketFilter{Priorities: []domain.TicketPriority{domain.TicketPriorityHigh}})
	require.NoError(t, err)
	assert.Len(t, high, 1)

	resolved, err := tickets.ListResolvedByEngineer(ctx, eng)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, domain.TicketPriorityLow, resolved[0].Priority)

	paged, err := tickets.List(ctx, repository.TicketFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, paged, 1)
	empty, err := tickets.List(ctx, repository.TicketFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSessionRevocationExpires(t *testing.T) {
	store := NewStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	sessions := store.Sessions()
	ctx := context.Background()

	require.NoError(t, sessions.Revoke(ctx, "sid", time.Minute))
	revoked, err := sessions.IsRevoked(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = sessions.IsRevoked(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestChangelogAndExtraTime(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	entry := &domain.ChangelogEntry{Kind: domain.ChangelogFirmware, Title: "FW"}
	require.NoError(t, store.Changelog().Create(ctx, entry))
	require.NoError(t, store.Changelog().Delete(ctx, entry.ID))
	assert.ErrorIs(t, store.Changelog().Delete(ctx, entry.ID), pgx.ErrNoRows)

	request := &domain.ExtraTimeRequest{TicketID: "t1", EngineerEmail: "eng@sfqs.local", Minutes: 10, Status: domain.ExtraTimePending}
	require.NoError(t, store.ExtraTime().Create(ctx, request))
	pending := domain.ExtraTimePending
	listed, err := store.ExtraTime().List(ctx, repository.ExtraTimeFilter{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestTicketUpdateHonoursGuard(t *testing.T) {
	ctx := context.Background()
	tickets := NewStore().Tickets()
	ticket := &domain.Ticket{Fixture: "FX-1", Description: "d", Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusOpen}
	require.NoError(t, tickets.Create(ctx, ticket))

	first, second := "a@sfqs.local", "b@sfqs.local"
	open := repository.GuardOf(ticket)

	claimA := *ticket
	claimA.Status = domain.TicketStatusClaimed
	claimA.EngineerEmail = &first
	require.NoError(t, tickets.Update(ctx, &claimA, open))

	claimB := *ticket
	claimB.Status = domain.TicketStatusClaimed
	claimB.EngineerEmail = &second
	assert.ErrorIs(t, tickets.Update(ctx, &claimB, open), repository.ErrStaleWrite)

	// same status, different claimer
	resolve := claimB
	resolve.Status = domain.TicketStatusResolved
	assert.ErrorIs(t, tickets.Update(ctx, &resolve, repository.TicketGuard{Status: domain.TicketStatusClaimed, EngineerEmail: &second}), repository.ErrStaleWrite)

	stored, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.EngineerEmail)
	assert.Equal(t, first, *stored.EngineerEmail)

	missing := domain.Ticket{ID: "nope"}
	assert.ErrorIs(t, tickets.Update(ctx, &missing, open), pgx.ErrNoRows)
}

func TestTicketExtraMinutesSurviveLifecycleWrites(t *testing.T) {
	ctx := context.Background()
	tickets := NewStore().Tickets()
	eng := "eng@sfqs.local"
	ticket := &domain.Ticket{Fixture: "FX-1", Description: "d", Status: domain.TicketStatusClaimed, EngineerEmail: &eng}
	require.NoError(t, tickets.Create(ctx, ticket))

	stale := *ticket
	require.NoError(t, tickets.AddExtraMinutes(ctx, ticket.ID, 30))
	require.NoError(t, tickets.AddExtraMinutes(ctx, ticket.ID, 15))

	guard := repository.GuardOf(&stale)
	stale.Status = domain.TicketStatusResolved
	require.NoError(t, tickets.Update(ctx, &stale, guard))
	assert.Equal(t, 45, stale.ExtraMinutes)

	stored, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, stored.ExtraMinutes)
	assert.ErrorIs(t, tickets.AddExtraMinutes(ctx, "nope", 5), pgx.ErrNoRows)
}

func TestTicketSearchTerm(t *testing.T) {
	ctx := context.Background()
	tickets := NewStore().Tickets()
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{ExternalKey: "SFQS-1", Fixture: "FX_1", Description: "100% fail"}))
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{ExternalKey: "SFQS-2", Fixture: "FXA1", Description: "no power"}))

	tests := []struct {
		term string
		want int
	}{
		{"   ", 2},
		{"  power ", 1},
		{"fx_1", 1},
		{"100%", 1},
		{"fx", 2},
		{"1 fx", 0},
	}
	for _, tt := range tests {
		term := tt.term
		found, err := tickets.List(ctx, repository.TicketFilter{SearchTerm: &term})
		require.NoError(t, err)
		assert.Len(t, found, tt.want, "term %q", tt.term)
	}
}

func TestExtraTimeUpdateHonoursStatus(t *testing.T) {
	ctx := context.Background()
	requests := NewStore().ExtraTime()
	request := &domain.ExtraTimeRequest{TicketID: "t1", Minutes: 10, Status: domain.ExtraTimePending}
	require.NoError(t, requests.Create(ctx, request))

	approved := *request
	approved.Status = domain.ExtraTimeApproved
	require.NoError(t, requests.Update(ctx, &approved, domain.ExtraTimePending))

	rejected := *request
	rejected.Status = domain.ExtraTimeRejected
	assert.ErrorIs(t, requests.Update(ctx, &rejected, domain.ExtraTimePending), repository.ErrStaleWrite)

	stored, err := requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExtraTimeApproved, stored.Status)
}
