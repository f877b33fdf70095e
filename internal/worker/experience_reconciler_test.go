package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingReconciler struct {
	calls atomic.Int32
	err   error
}

func (c *countingReconciler) ReconcileAll(ctx context.Context, batch int) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestExperienceReconcilerRunOnce(t *testing.T) {
	rec := &countingReconciler{}
	NewExperienceReconciler(rec, time.Minute, nil).RunOnce(context.Background())
	assert.Equal(t, int32(1), rec.calls.Load())

	failing := &countingReconciler{err: errors.New("db down")}
	NewExperienceReconciler(failing, time.Minute, nil).RunOnce(context.Background())
	assert.Equal(t, int32(1), failing.calls.Load())
}

func TestExperienceReconcilerDisabled(t *testing.T) {
	rec := &countingReconciler{}
	done := make(chan struct{})
	go func() {
		NewExperienceReconciler(rec, 0, nil).Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled reconciler should return immediately")
	}
	assert.Equal(t, int32(0), rec.calls.Load())
}

func TestExperienceReconcilerStopsOnCancel(t *testing.T) {
	rec := &countingReconciler{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewExperienceReconciler(rec, 5*time.Millisecond, nil).Run(ctx)
		close(done)
	}()
	assert.Eventually(t, func() bool { return rec.calls.Load() > 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
