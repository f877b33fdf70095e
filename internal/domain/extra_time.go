package domain

import "time"

// ExtraTimeStatus captures the review state of an extra-time request.
type ExtraTimeStatus string

const (
	ExtraTimePending  ExtraTimeStatus = "pending"
	ExtraTimeApproved ExtraTimeStatus = "approved"
	ExtraTimeRejected ExtraTimeStatus = "rejected"
)

// ExtraTimeRequest asks a reviewer for more time on a claimed ticket.
type ExtraTimeRequest struct {
	ID            string
	TicketID      string
	EngineerEmail string
	Minutes       int
	Reason        string
	Status        ExtraTimeStatus
	ReviewerEmail *string
	CreatedAt     time.Time
	ReviewedAt    *time.Time
}
