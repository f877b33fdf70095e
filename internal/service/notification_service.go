package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sfqs/ticket-system/internal/config"
	"github.com/sfqs/ticket-system/internal/events"
)

// Notification is one outgoing email.
type Notification struct {
	From      string
	To        string
	EventType events.EventType
	SubjectID string
}

// Outbox queues notifications for asynchronous delivery. Enqueue reports
// false when the notification was not accepted.
type Outbox interface {
	Enqueue(note Notification) bool
}

// NotificationService turns domain events into email notifications.
// Delivery is a logging stub.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	outbox     Outbox
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// WithOutbox routes notifications through outbox instead of delivering them
// on the publishing goroutine.
func (n *NotificationService) WithOutbox(outbox Outbox) *NotificationService {
	n.outbox = outbox
	return n
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventUserReviewed, n.handleUserReviewed)
	n.dispatcher.Subscribe(events.EventTicketSubmitted, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketClaimed, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketResolved, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventExtraTimeReviewed, n.handleExtraTimeReviewed)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("email", event.Actor.Email), zap.String("role", string(event.Actor.Role)))
	n.sendEmailNotificationStub(ctx, event, event.Actor.Email)
	return nil
}

func (n *NotificationService) handleUserReviewed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserReviewedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("UserReviewed", zap.String("email", payload.Email), zap.String("status", string(payload.Status)))
	n.sendEmailNotificationStub(ctx, event, payload.Email)
	return nil
}

func (n *NotificationService) handleTicketEvent(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketPayload)
	if !ok {
		return nil
	}
	n.logger.Info(string(event.Type), zap.String("ticket_id", event.SubjectID), zap.String("external_key", payload.ExternalKey))
	n.sendEmailNotificationStub(ctx, event, payload.RequesterEmail)
	return nil
}

func (n *NotificationService) handleExtraTimeReviewed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ExtraTimePayload)
	if !ok {
		return nil
	}
	n.logger.Info("ExtraTimeReviewed", zap.String("ticket_id", payload.TicketID), zap.String("status", string(payload.Status)))
	n.sendEmailNotificationStub(ctx, event, payload.EngineerEmail)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || to == "" {
		return
	}
	note := Notification{From: n.cfg.EmailFrom, To: to, EventType: event.Type, SubjectID: event.SubjectID}
	if n.outbox != nil && n.outbox.Enqueue(note) {
		return
	}
	n.Deliver(ctx, note)
}

// Deliver sends one notification. Sending is a log line.
func (n *NotificationService) Deliver(_ context.Context, note Notification) {
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", note.From),
		zap.String("to", note.To),
		zap.String("subject_id", note.SubjectID),
		zap.String("event_type", string(note.EventType)))
}
