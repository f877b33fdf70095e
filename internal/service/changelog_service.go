package service

import (
	"context"
	"strings"

	"github.com/sfqs/ticket-system/internal/domain"
	"github.com/sfqs/ticket-system/internal/events"
	"github.com/sfqs/ticket-system/internal/repository"
	apperrors "github.com/sfqs/ticket-system/pkg/util/errorutil"
)

// ChangelogService manages published inventory and firmware entries.
type ChangelogService struct {
	publisher
	entries repository.ChangelogRepository
}

// ChangelogInput describes a new entry.
type ChangelogInput struct {
	Kind        domain.ChangelogKind
	Title       string
	Version     string
	Description string
}

// NewChangelogService constructs the service.
func NewChangelogService(entries repository.ChangelogRepository, dispatcher events.Dispatcher) *ChangelogService {
	return &ChangelogService{publisher: publisher{dispatcher: dispatcher}, entries: entries}
}

// Publish stores a changelog entry authored by the session owner.
func (s *ChangelogService) Publish(ctx context.Context, session domain.Session, input ChangelogInput) (*domain.ChangelogEntry, error) {
	if !canEditChangelog(session) {
		return nil, apperrors.NewForbidden("changelog is maintained by engineers and managers")
	}
	details := map[string]any{}
	if input.Kind != domain.ChangelogInventory && input.Kind != domain.ChangelogFirmware {
		details["kind"] = "must be inventory or firmware"
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		details["title"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid changelog entry", details)
	}
	entry := &domain.ChangelogEntry{
		Kind:        input.Kind,
		Title:       title,
		Version:     strings.TrimSpace(input.Version),
		Description: strings.TrimSpace(input.Description),
		AuthorEmail: session.Email,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventChangelogPublished, entry.ID, events.ActorFromSession(session), events.ChangelogPayload{
		Kind:    entry.Kind,
		Title:   entry.Title,
		Version: entry.Version,
	})
	return entry, nil
}

// List returns entries, newest first, optionally narrowed by kind.
func (s *ChangelogService) List(ctx context.Context, kind *domain.ChangelogKind, limit, offset int) ([]domain.ChangelogEntry, error) {
	entries, err := s.entries.List(ctx, kind, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// Delete removes an entry.
func (s *ChangelogService) Delete(ctx context.Context, session domain.Session, id string) error {
	if !canEditChangelog(session) {
		return apperrors.NewForbidden("changelog is maintained by engineers and managers")
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		mapped := apperrors.MapError(err)
		if apperrors.IsCode(mapped, "NOT_FOUND") {
			return apperrors.NewNotFound("changelog entry", map[string]any{"id": id})
		}
		return mapped
	}
	return nil
}

func canEditChangelog(session domain.Session) bool {
	switch session.EffectiveRole() {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleEngineer:
		return true
	}
	return false
}
