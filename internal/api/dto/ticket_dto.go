package dto

import (
	"time"

	"github.com/sfqs/ticket-system/internal/domain"
)

// SubmitTicketRequest payload.
type SubmitTicketRequest struct {
	Fixture        string                `json:"fixture" validate:"required"`
	ProductionLine string                `json:"production_line"`
	Description    string                `json:"description" validate:"required"`
	Priority       domain.TicketPriority `json:"priority" validate:"omitempty,oneof=Alta Media Baja"`
}

// ResolveTicketRequest payload.
type ResolveTicketRequest struct {
	Resolution string `json:"resolution" validate:"required"`
}

// TicketResponse is the client view of a ticket.
type TicketResponse struct {
	ID             string                `json:"id"`
	ExternalKey    string                `json:"external_key"`
	Fixture        string                `json:"fixture"`
	ProductionLine string                `json:"production_line,omitempty"`
	Description    string                `json:"description"`
	Priority       domain.TicketPriority `json:"priority"`
	Status         domain.TicketStatus   `json:"status"`
	RequesterEmail string                `json:"requester_email"`
	RequesterName  string                `json:"requester_name"`
	EngineerEmail  *string               `json:"engineer_email"`
	Resolution     string                `json:"resolution,omitempty"`
	ExtraMinutes   int                   `json:"extra_minutes"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	ClaimedAt      *time.Time            `json:"claimed_at"`
	ResolvedAt     *time.Time            `json:"resolved_at"`
}

// ResolveTicketResponse reports the resolved ticket and the experience it earned.
type ResolveTicketResponse struct {
	Ticket        TicketResponse      `json:"ticket"`
	PointsAwarded int                 `json:"points_awarded"`
	Experience    *ExperienceResponse `json:"experience"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             ticket.ID,
		ExternalKey:    ticket.ExternalKey,
		Fixture:        ticket.Fixture,
		ProductionLine: ticket.ProductionLine,
		Description:    ticket.Description,
		Priority:       ticket.Priority,
		Status:         ticket.Status,
		RequesterEmail: ticket.RequesterEmail,
		RequesterName:  ticket.RequesterName,
		EngineerEmail:  ticket.EngineerEmail,
		Resolution:     ticket.Resolution,
		ExtraMinutes:   ticket.ExtraMinutes,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
		ClaimedAt:      ticket.ClaimedAt,
		ResolvedAt:     ticket.ResolvedAt,
	}
}

// NewTicketResponses maps a slice of tickets.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}
