package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfqs/ticket-system/internal/domain"
	"github.com/sfqs/ticket-system/internal/events"
	apperrors "github.com/sfqs/ticket-system/pkg/util/errorutil"
)

func TestChangelogPublishListDelete(t *testing.T) {
	repo := &fakeChangelog{}
	dispatcher := &recordingDispatcher{}
	svc := NewChangelogService(repo, dispatcher)
	ctx := context.Background()
	eng := engineerSession(engEmail)

	entry, err := svc.Publish(ctx, eng, ChangelogInput{Kind: domain.ChangelogFirmware, Title: " FW 2.1 ", Version: "2.1.0"})
	require.NoError(t, err)
	assert.Equal(t, "FW 2.1", entry.Title)
	assert.Equal(t, engEmail, entry.AuthorEmail)

	_, err = svc.Publish(ctx, eng, ChangelogInput{Kind: domain.ChangelogInventory, Title: "Rack B"})
	require.NoError(t, err)

	firmware := domain.ChangelogFirmware
	listed, err := svc.List(ctx, &firmware, 10, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	all, err := svc.List(ctx, nil, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.Delete(ctx, sessionFor(domain.RoleAdmin, "admin@sfqs.local"), entry.ID))
	err = svc.Delete(ctx, eng, entry.ID)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	assert.Equal(t, []events.EventType{events.EventChangelogPublished, events.EventChangelogPublished}, dispatcher.types())
}

func TestChangelogGuards(t *testing.T) {
	svc := NewChangelogService(&fakeChangelog{}, nil)
	ctx := context.Background()

	_, err := svc.Publish(ctx, sessionFor(domain.RoleSupervisor, "sup@sfqs.local"), ChangelogInput{Kind: domain.ChangelogFirmware, Title: "x"})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = svc.Publish(ctx, engineerSession(engEmail), ChangelogInput{Kind: "software", Title: ""})
	require.Error(t, err)
	details := apperrors.ToDomainError(err).Details
	assert.Contains(t, details, "kind")
	assert.Contains(t, details, "title")

	err = svc.Delete(ctx, domain.AnonymousSession(), "entry-1")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}
