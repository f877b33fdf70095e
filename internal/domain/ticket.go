package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusClaimed  TicketStatus = "claimed"
	TicketStatusResolved TicketStatus = "resolved"
)

// TicketPriority is the urgency label chosen by the requester.
type TicketPriority string

const (
	TicketPriorityHigh   TicketPriority = "Alta"
	TicketPriorityMedium TicketPriority = "Media"
	TicketPriorityLow    TicketPriority = "Baja"
)

// Known reports whether p is one of the declared priorities.
func (p TicketPriority) Known() bool {
	switch p {
	case TicketPriorityHigh, TicketPriorityMedium, TicketPriorityLow:
		return true
	}
	return false
}

// Ticket is a support request raised against a production fixture.
type Ticket struct {
	ID             string
	ExternalKey    string
	Fixture        string
	ProductionLine string
	Description    string
	Priority       TicketPriority
	Status         TicketStatus
	RequesterEmail string
	RequesterName  string
	EngineerEmail  *string
	Resolution     string
	ExtraMinutes   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ClaimedAt      *time.Time
	ResolvedAt     *time.Time
}
