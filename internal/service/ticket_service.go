package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/sfqs/ticket-system/internal/domain"
	"github.com/sfqs/ticket-system/internal/events"
	"github.com/sfqs/ticket-system/internal/repository"
	apperrors "github.com/sfqs/ticket-system/pkg/util/errorutil"
)

// TicketService coordinates the ticket lifecycle.
type TicketService struct {
	publisher
	tickets    repository.TicketRepository
	experience *ExperienceService
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators of the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Experience *ExperienceService
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketSubmitInput describes a new ticket.
type TicketSubmitInput struct {
	Fixture        string
	ProductionLine string
	Description    string
	Priority       domain.TicketPriority
}

// TicketListFilter describes listing filters accepted from clients.
type TicketListFilter struct {
	Statuses      []domain.TicketStatus
	Priorities    []domain.TicketPriority
	Fixture       *string
	SearchTerm    *string
	EngineerEmail *string
	Mine          bool
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	Limit         int
	Offset        int
}

// ResolveOutcome is the result of resolving a ticket.
type ResolveOutcome struct {
	Ticket        *domain.Ticket
	PointsAwarded int
	// Experience is nil when the refresh failed; the stored value is then stale
	// until the next refresh.
	Experience *ExperienceView
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		publisher:  publisher{dispatcher: deps.Dispatcher},
		tickets:    deps.TicketRepo,
		experience: deps.Experience,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit creates a ticket on behalf of the session owner.
func (s *TicketService) Submit(ctx context.Context, session domain.Session, input TicketSubmitInput) (*domain.Ticket, error) {
	if !session.Authenticated {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	fixture := strings.TrimSpace(input.Fixture)
	description := strings.TrimSpace(input.Description)
	details := map[string]any{}
	if fixture == "" {
		details["fixture"] = "required"
	}
	if description == "" {
		details["description"] = "required"
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Known() {
		details["priority"] = "must be one of Alta, Media, Baja"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket", details)
	}

	ticket := &domain.Ticket{
		ExternalKey:    generateTicketKey(),
		Fixture:        fixture,
		ProductionLine: strings.TrimSpace(input.ProductionLine),
		Description:    description,
		Priority:       priority,
		Status:         domain.TicketStatusOpen,
		RequesterEmail: session.Email,
		RequesterName:  session.Name,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventTicketSubmitted, ticket.ID, events.ActorFromSession(session), ticketPayload(ticket, 0))
	return ticket, nil
}

// List returns tickets visible to the session.
func (s *TicketService) List(ctx context.Context, session domain.Session, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		EngineerEmail: filter.EngineerEmail,
		Statuses:      filter.Statuses,
		Priorities:    filter.Priorities,
		Fixture:       filter.Fixture,
		SearchTerm:    filter.SearchTerm,
		CreatedFrom:   filter.CreatedFrom,
		CreatedTo:     filter.CreatedTo,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	}
	if filter.Mine || !seesAllTickets(session) {
		email := session.Email
		repoFilter.RequesterEmail = &email
	}
	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get fetches a ticket the session may see.
func (s *TicketService) Get(ctx context.Context, session domain.Session, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !seesAllTickets(session) && ticket.RequesterEmail != session.Email {
		return nil, apperrors.NewForbidden("ticket belongs to another requester")
	}
	return ticket, nil
}

// Claim assigns an open ticket to the calling engineer.
func (s *TicketService) Claim(ctx context.Context, session domain.Session, ticketID string) (*domain.Ticket, error) {
	if session.EffectiveRole() != domain.RoleEngineer {
		return nil, apperrors.NewForbidden("only engineers can claim tickets")
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	guard := repository.GuardOf(ticket)
	if err := s.transition(ticket, domain.TicketStatusClaimed); err != nil {
		return nil, err
	}
	now := s.now()
	email := session.Email
	ticket.EngineerEmail = &email
	ticket.ClaimedAt = &now
	if err := s.tickets.Update(ctx, ticket, guard); err != nil {
		return nil, mapWriteError(err, "ticket", ticket.ID)
	}
	s.publish(ctx, events.EventTicketClaimed, ticket.ID, events.ActorFromSession(session), ticketPayload(ticket, 0))
	return ticket, nil
}

// Release returns a claimed ticket to the open queue.
func (s *TicketService) Release(ctx context.Context, session domain.Session, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadClaimed(ctx, session, ticketID)
	if err != nil {
		return nil, err
	}
	guard := repository.GuardOf(ticket)
	if err := s.transition(ticket, domain.TicketStatusOpen); err != nil {
		return nil, err
	}
	ticket.EngineerEmail = nil
	ticket.ClaimedAt = nil
	if err := s.tickets.Update(ctx, ticket, guard); err != nil {
		return nil, mapWriteError(err, "ticket", ticket.ID)
	}
	s.publish(ctx, events.EventTicketReleased, ticket.ID, events.ActorFromSession(session), ticketPayload(ticket, 0))
	return ticket, nil
}

// Resolve closes a claimed ticket and refreshes the engineer's experience.
func (s *TicketService) Resolve(ctx context.Context, session domain.Session, ticketID, resolution string) (*ResolveOutcome, error) {
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return nil, apperrors.NewValidationError("resolution is required", map[string]any{"resolution": "required"})
	}
	ticket, err := s.loadClaimed(ctx, session, ticketID)
	if err != nil {
		return nil, err
	}
	guard := repository.GuardOf(ticket)
	if err := s.transition(ticket, domain.TicketStatusResolved); err != nil {
		return nil, err
	}
	now := s.now()
	ticket.Resolution = resolution
	ticket.ResolvedAt = &now
	if err := s.tickets.Update(ctx, ticket, guard); err != nil {
		return nil, mapWriteError(err, "ticket", ticket.ID)
	}

	outcome := &ResolveOutcome{Ticket: ticket}
	if s.experience != nil {
		outcome.PointsAwarded = s.experience.PointsFor(ticket.Priority)
		view, err := s.experience.Refresh(ctx, session.Email)
		if err != nil {
			s.logger.Warn("experience refresh after resolve failed",
				zap.String("ticket_id", ticket.ID),
				zap.String("email", session.Email),
				zap.Error(err))
		} else {
			outcome.Experience = view
		}
	}
	s.publish(ctx, events.EventTicketResolved, ticket.ID, events.ActorFromSession(session), ticketPayload(ticket, outcome.PointsAwarded))
	return outcome, nil
}

func (s *TicketService) load(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// loadClaimed fetches a ticket and checks the session owns the claim.
func (s *TicketService) loadClaimed(ctx context.Context, session domain.Session, ticketID string) (*domain.Ticket, error) {
	if session.EffectiveRole() != domain.RoleEngineer {
		return nil, apperrors.NewForbidden("only engineers work tickets")
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.EngineerEmail == nil || *ticket.EngineerEmail != session.Email {
		return nil, apperrors.NewForbidden("ticket is not claimed by you")
	}
	return ticket, nil
}

func (s *TicketService) transition(ticket *domain.Ticket, next domain.TicketStatus) error {
	if !isValidTransition(ticket.Status, next) {
		return apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   next,
		})
	}
	ticket.Status = next
	return nil
}

// seesAllTickets reports whether the role works the whole queue.
func seesAllTickets(session domain.Session) bool {
	switch session.EffectiveRole() {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleEngineer:
		return true
	}
	return false
}

func ticketPayload(ticket *domain.Ticket, points int) events.TicketPayload {
	return events.TicketPayload{
		ExternalKey:    ticket.ExternalKey,
		Fixture:        ticket.Fixture,
		Priority:       ticket.Priority,
		RequesterEmail: ticket.RequesterEmail,
		EngineerEmail:  ticket.EngineerEmail,
		PointsAwarded:  points,
	}
}

func generateTicketKey() string {
	return "SFQS-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:     {domain.TicketStatusClaimed},
	domain.TicketStatusClaimed:  {domain.TicketStatusOpen, domain.TicketStatusResolved},
	domain.TicketStatusResolved: {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
