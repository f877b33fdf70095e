package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sfqs/ticket-system/internal/domain"
)

func TestWhereBuilder(t *testing.T) {
	var w where
	assert.Equal(t, "TRUE", w.String())

	email := "eng@sfqs.local"
	var missing *string
	eqIfSet(&w, "engineer_email", &email)
	eqIfSet(&w, "fixture", missing)
	inIfAny(&w, "status", []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusClaimed})
	inIfAny(&w, "priority", []domain.TicketPriority(nil))
	w.add("created_at >= %s", "2026-01-01")

	assert.Equal(t, "engineer_email = $1 AND status IN ($2, $3) AND created_at >= $4", w.String())
	assert.Equal(t, []any{email, domain.TicketStatusOpen, domain.TicketStatusClaimed, "2026-01-01"}, w.args)
}

func TestPage(t *testing.T) {
	assert.Equal(t, "LIMIT 20 OFFSET 0", page(0, -5, 20))
	assert.Equal(t, "LIMIT 5 OFFSET 10", page(5, 10, 20))
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%fx-1%", containsPattern("fx-1"))
	assert.Equal(t, `%fx\_1%`, containsPattern("fx_1"))
	assert.Equal(t, `%100\%%`, containsPattern("100%"))
	assert.Equal(t, `%a\\b%`, containsPattern(`a\b`))
}

func TestTicketGuardHolds(t *testing.T) {
	a, b := "a@sfqs.local", "b@sfqs.local"
	claimedByA := domain.Ticket{Status: domain.TicketStatusClaimed, EngineerEmail: &a}
	guard := GuardOf(&claimedByA)

	assert.True(t, guard.Holds(claimedByA))
	assert.False(t, guard.Holds(domain.Ticket{Status: domain.TicketStatusClaimed, EngineerEmail: &b}))
	assert.False(t, guard.Holds(domain.Ticket{Status: domain.TicketStatusOpen}))
	assert.True(t, GuardOf(&domain.Ticket{Status: domain.TicketStatusOpen}).Holds(domain.Ticket{Status: domain.TicketStatusOpen}))

	// the guard keeps its own copy of the claimer
	original := a
	a = "changed"
	assert.True(t, guard.Holds(domain.Ticket{Status: domain.TicketStatusClaimed, EngineerEmail: &original}))
}
