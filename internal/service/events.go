package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sfqs/ticket-system/internal/events"
)

// publisher stamps and publishes domain events. A nil dispatcher drops them.
type publisher struct {
	dispatcher events.Dispatcher
}

func (p publisher) publish(ctx context.Context, eventType events.EventType, subjectID string, actor events.Actor, payload any) {
	if p.dispatcher == nil {
		return
	}
	_ = p.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
