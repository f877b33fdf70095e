package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ReconcileBatch is how many engineers a pass loads per page.
const ReconcileBatch = 500

// Reconciler recomputes engineer experience from resolved tickets.
type Reconciler interface {
	ReconcileAll(ctx context.Context, batch int) (int, error)
}

// ExperienceReconciler periodically rebuilds stored experience so that
// snapshots drifted by missed refreshes converge on the ticket history.
type ExperienceReconciler struct {
	reconciler Reconciler
	interval   time.Duration
	logger     *zap.Logger
}

// NewExperienceReconciler builds the worker. A non-positive interval disables it.
func NewExperienceReconciler(reconciler Reconciler, interval time.Duration, logger *zap.Logger) *ExperienceReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExperienceReconciler{reconciler: reconciler, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled, reconciling once per interval.
func (w *ExperienceReconciler) Run(ctx context.Context) {
	if w.reconciler == nil || w.interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.logger.Info("experience reconciler started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("experience reconciler stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single reconcile pass.
func (w *ExperienceReconciler) RunOnce(ctx context.Context) {
	start := time.Now()
	updated, err := w.reconciler.ReconcileAll(ctx, ReconcileBatch)
	if err != nil {
		w.logger.Warn("experience reconcile failed", zap.Error(err))
		return
	}
	w.logger.Info("experience reconcile finished",
		zap.Int("updated", updated),
		zap.Duration("took", time.Since(start)))
}
