package repository

import (
	"errors"

	"github.com/sfqs/ticket-system/internal/domain"
)

// ErrStaleWrite is returned by conditional updates when the row no longer
// holds the state it was read in.
var ErrStaleWrite = errors.New("repository: row changed since it was read")

// TicketGuard is the lifecycle state a ticket must still hold for an update
// to apply.
type TicketGuard struct {
	Status        domain.TicketStatus
	EngineerEmail *string
}

// GuardOf captures ticket's current lifecycle state. Call it before mutating.
func GuardOf(ticket *domain.Ticket) TicketGuard {
	guard := TicketGuard{Status: ticket.Status}
	if ticket.EngineerEmail != nil {
		email := *ticket.EngineerEmail
		guard.EngineerEmail = &email
	}
	return guard
}

// Holds reports whether ticket is still in the guarded state.
func (g TicketGuard) Holds(ticket domain.Ticket) bool {
	if ticket.Status != g.Status {
		return false
	}
	if g.EngineerEmail == nil || ticket.EngineerEmail == nil {
		return g.EngineerEmail == nil && ticket.EngineerEmail == nil
	}
	return *g.EngineerEmail == *ticket.EngineerEmail
}
