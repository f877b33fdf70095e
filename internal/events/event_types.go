package events

import (
	"time"

	"github.com/sfqs/ticket-system/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered     EventType = "user_registered"
	EventUserReviewed       EventType = "user_reviewed"
	EventTicketSubmitted    EventType = "ticket_submitted"
	EventTicketClaimed      EventType = "ticket_claimed"
	EventTicketReleased     EventType = "ticket_released"
	EventTicketResolved     EventType = "ticket_resolved"
	EventExtraTimeRequested EventType = "extra_time_requested"
	EventExtraTimeReviewed  EventType = "extra_time_reviewed"
	EventChangelogPublished EventType = "changelog_published"
)

// Actor identifies who caused an event.
type Actor struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// ActorFromSession builds the actor of a session.
func ActorFromSession(session domain.Session) Actor {
	return Actor{Email: session.Email, Role: session.EffectiveRole()}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserReviewedPayload payload.
type UserReviewedPayload struct {
	Email    string            `json:"email"`
	Role     domain.Role       `json:"role"`
	Status   domain.UserStatus `json:"status"`
	Reviewer string            `json:"reviewer"`
}

// TicketPayload is shared by ticket lifecycle events.
type TicketPayload struct {
	ExternalKey    string                `json:"external_key"`
	Fixture        string                `json:"fixture"`
	Priority       domain.TicketPriority `json:"priority"`
	RequesterEmail string                `json:"requester_email"`
	EngineerEmail  *string               `json:"engineer_email,omitempty"`
	PointsAwarded  int                   `json:"points_awarded,omitempty"`
}

// ExtraTimePayload payload.
type ExtraTimePayload struct {
	TicketID      string                 `json:"ticket_id"`
	EngineerEmail string                 `json:"engineer_email"`
	Minutes       int                    `json:"minutes"`
	Status        domain.ExtraTimeStatus `json:"status"`
}

// ChangelogPayload payload.
type ChangelogPayload struct {
	Kind    domain.ChangelogKind `json:"kind"`
	Title   string               `json:"title"`
	Version string               `json:"version"`
}
