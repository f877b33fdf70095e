package dto

import (
	"time"

	"github.com/sfqs/ticket-system/internal/domain"
	"github.com/sfqs/ticket-system/internal/service"
)

// ExperienceResponse is the experience of an engineer.
type ExperienceResponse struct {
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	Experience    int    `json:"experience"`
	Level         int    `json:"level"`
	TicketsSolved int    `json:"tickets_solved"`
	NextLevelAt   *int   `json:"next_level_at"`
}

// ExtraTimeCreateRequest payload.
type ExtraTimeCreateRequest struct {
	TicketID string `json:"ticket_id" validate:"required"`
	Minutes  int    `json:"minutes" validate:"min=1,max=480"`
	Reason   string `json:"reason" validate:"required"`
}

// ExtraTimeReviewRequest payload.
type ExtraTimeReviewRequest struct {
	Approve bool `json:"approve"`
}

// ExtraTimeResponse describes a request.
type ExtraTimeResponse struct {
	ID            string                 `json:"id"`
	TicketID      string                 `json:"ticket_id"`
	EngineerEmail string                 `json:"engineer_email"`
	Minutes       int                    `json:"minutes"`
	Reason        string                 `json:"reason"`
	Status        domain.ExtraTimeStatus `json:"status"`
	ReviewerEmail *string                `json:"reviewer_email"`
	CreatedAt     time.Time              `json:"created_at"`
	ReviewedAt    *time.Time             `json:"reviewed_at"`
}

// NewExperienceResponse maps a service view. A nil view maps to nil.
func NewExperienceResponse(view *service.ExperienceView) *ExperienceResponse {
	if view == nil {
		return nil
	}
	return &ExperienceResponse{
		Email:         view.Email,
		Name:          view.Name,
		Experience:    view.Experience,
		Level:         view.Level,
		TicketsSolved: view.TicketsSolved,
		NextLevelAt:   view.NextLevelAt,
	}
}

// NewExtraTimeResponse maps a domain request.
func NewExtraTimeResponse(request *domain.ExtraTimeRequest) ExtraTimeResponse {
	return ExtraTimeResponse{
		ID:            request.ID,
		TicketID:      request.TicketID,
		EngineerEmail: request.EngineerEmail,
		Minutes:       request.Minutes,
		Reason:        request.Reason,
		Status:        request.Status,
		ReviewerEmail: request.ReviewerEmail,
		CreatedAt:     request.CreatedAt,
		ReviewedAt:    request.ReviewedAt,
	}
}
