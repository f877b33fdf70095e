package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/sfqs/ticket-system/internal/service"
)

// DefaultQueueSize is used when no positive queue size is configured.
const DefaultQueueSize = 100

// Deliverer sends a single notification.
type Deliverer interface {
	Deliver(ctx context.Context, note service.Notification)
}

// NotificationWorker drains queued notifications on its own goroutine so
// event publishers never wait on delivery.
type NotificationWorker struct {
	queue     chan service.Notification
	deliverer Deliverer
	logger    *zap.Logger
	done      chan struct{}
}

// NewNotificationWorker builds a worker with a bounded queue.
func NewNotificationWorker(deliverer Deliverer, size int, logger *zap.Logger) *NotificationWorker {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		queue:     make(chan service.Notification, size),
		deliverer: deliverer,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Enqueue never blocks; it reports false when the queue is full.
func (w *NotificationWorker) Enqueue(note service.Notification) bool {
	select {
	case w.queue <- note:
		return true
	default:
		w.logger.Warn("notification queue full", zap.String("to", note.To), zap.String("event_type", string(note.EventType)))
		return false
	}
}

// Run delivers until ctx is cancelled, then flushes what is still queued.
func (w *NotificationWorker) Run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case note := <-w.queue:
			w.deliverer.Deliver(ctx, note)
		case <-ctx.Done():
			w.flush()
			return
		}
	}
}

// Done is closed once Run has returned.
func (w *NotificationWorker) Done() <-chan struct{} {
	return w.done
}

func (w *NotificationWorker) flush() {
	ctx := context.Background()
	for {
		select {
		case note := <-w.queue:
			w.deliverer.Deliver(ctx, note)
		default:
			return
		}
	}
}

// StartNotificationWorker subscribes the notification handlers and starts
// asynchronous delivery bound to ctx.
func StartNotificationWorker(ctx context.Context, notifications *service.NotificationService, size int, logger *zap.Logger) *NotificationWorker {
	if notifications == nil {
		return nil
	}
	w := NewNotificationWorker(notifications, size, logger)
	notifications.WithOutbox(w).RegisterHandlers()
	go w.Run(ctx)
	return w
}
