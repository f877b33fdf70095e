package dto

import (
	"time"

	"github.com/sfqs/ticket-system/internal/domain"
)

// ChangelogCreateRequest payload.
type ChangelogCreateRequest struct {
	Kind        domain.ChangelogKind `json:"kind" validate:"required,oneof=inventory firmware"`
	Title       string               `json:"title" validate:"required"`
	Version     string               `json:"version"`
	Description string               `json:"description"`
}

// ChangelogResponse describes an entry.
type ChangelogResponse struct {
	ID          string               `json:"id"`
	Kind        domain.ChangelogKind `json:"kind"`
	Title       string               `json:"title"`
	Version     string               `json:"version,omitempty"`
	Description string               `json:"description,omitempty"`
	AuthorEmail string               `json:"author_email"`
	CreatedAt   time.Time            `json:"created_at"`
}

// NewChangelogResponse maps a domain entry.
func NewChangelogResponse(entry *domain.ChangelogEntry) ChangelogResponse {
	return ChangelogResponse{
		ID:          entry.ID,
		Kind:        entry.Kind,
		Title:       entry.Title,
		Version:     entry.Version,
		Description: entry.Description,
		AuthorEmail: entry.AuthorEmail,
		CreatedAt:   entry.CreatedAt,
	}
}
