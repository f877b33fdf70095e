package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sfqs/ticket-system/internal/domain"
	"github.com/sfqs/ticket-system/internal/events"
	"github.com/sfqs/ticket-system/internal/repository"
	apperrors "github.com/sfqs/ticket-system/pkg/util/errorutil"
)

// MaxExtraMinutes caps a single extra-time request.
const MaxExtraMinutes = 480

// ExtraTimeService handles engineers asking for more time on claimed tickets.
type ExtraTimeService struct {
	publisher
	requests repository.ExtraTimeRepository
	tickets  repository.TicketRepository
	now      func() time.Time
}

// ExtraTimeInput describes a new request.
type ExtraTimeInput struct {
	TicketID string
	Minutes  int
	Reason   string
}

// NewExtraTimeService constructs the service.
func NewExtraTimeService(requests repository.ExtraTimeRepository, tickets repository.TicketRepository, dispatcher events.Dispatcher) *ExtraTimeService {
	return &ExtraTimeService{
		publisher: publisher{dispatcher: dispatcher},
		requests:  requests,
		tickets:   tickets,
		now:       time.Now,
	}
}

// Request files a pending request for a ticket claimed by the session owner.
func (s *ExtraTimeService) Request(ctx context.Context, session domain.Session, input ExtraTimeInput) (*domain.ExtraTimeRequest, error) {
	if session.EffectiveRole() != domain.RoleEngineer {
		return nil, apperrors.NewForbidden("only engineers request extra time")
	}
	reason := strings.TrimSpace(input.Reason)
	details := map[string]any{}
	if input.Minutes <= 0 || input.Minutes > MaxExtraMinutes {
		details["minutes"] = "must be between 1 and 480"
	}
	if reason == "" {
		details["reason"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid extra time request", details)
	}

	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": input.TicketID})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.Status != domain.TicketStatusClaimed || ticket.EngineerEmail == nil || *ticket.EngineerEmail != session.Email {
		return nil, apperrors.NewForbidden("ticket is not claimed by you")
	}

	pending := domain.ExtraTimePending
	ticketID := ticket.ID
	existing, err := s.requests.List(ctx, repository.ExtraTimeFilter{Status: &pending, TicketID: &ticketID, Limit: 1})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(existing) > 0 {
		return nil, apperrors.NewConflict("a request for this ticket is already pending", map[string]any{"request_id": existing[0].ID})
	}

	request := &domain.ExtraTimeRequest{
		TicketID:      ticket.ID,
		EngineerEmail: session.Email,
		Minutes:       input.Minutes,
		Reason:        reason,
		Status:        domain.ExtraTimePending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventExtraTimeRequested, request.ID, events.ActorFromSession(session), extraTimePayload(request))
	return request, nil
}

// Review approves or rejects a pending request. Approval adds the minutes to the ticket.
func (s *ExtraTimeService) Review(ctx context.Context, reviewer domain.Session, requestID string, approve bool) (*domain.ExtraTimeRequest, error) {
	if !reviewer.EffectiveRole().Reviewer() {
		return nil, apperrors.NewForbidden("only admins and managers review extra time")
	}
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("extra time request", map[string]any{"id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	if request.Status != domain.ExtraTimePending {
		return nil, apperrors.NewConflict("request already reviewed", map[string]any{"status": request.Status})
	}

	now := s.now()
	email := reviewer.Email
	request.ReviewerEmail = &email
	request.ReviewedAt = &now
	request.Status = domain.ExtraTimeRejected
	if approve {
		request.Status = domain.ExtraTimeApproved
	}
	if err := s.requests.Update(ctx, request, domain.ExtraTimePending); err != nil {
		return nil, mapWriteError(err, "extra time request", request.ID)
	}

	if approve {
		if err := s.tickets.AddExtraMinutes(ctx, request.TicketID, request.Minutes); err != nil {
			return nil, mapWriteError(err, "ticket", request.TicketID)
		}
	}
	s.publish(ctx, events.EventExtraTimeReviewed, request.ID, events.ActorFromSession(reviewer), extraTimePayload(request))
	return request, nil
}

// List returns requests matching the filter.
func (s *ExtraTimeService) List(ctx context.Context, filter repository.ExtraTimeFilter) ([]domain.ExtraTimeRequest, error) {
	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}

func extraTimePayload(request *domain.ExtraTimeRequest) events.ExtraTimePayload {
	return events.ExtraTimePayload{
		TicketID:      request.TicketID,
		EngineerEmail: request.EngineerEmail,
		Minutes:       request.Minutes,
		Status:        request.Status,
	}
}
