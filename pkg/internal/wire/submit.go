package wire

import (
	"context"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// Submit schedules the conversion of recordID. It blocks while the admission gate is saturated and
// returns ctx.Err() if ctx ends first, in which case nothing was scheduled.
func (w *Wire) Submit(ctx context.Context, recordID string) error {
	if w.IsClosed() {
		w.meter.IncrementCount(types.MetricTasksRejected)
		return ErrWireClosed
	}

	if err := w.gate.Acquire(ctx); err != nil {
		w.meter.IncrementCount(types.MetricTasksRejected)
		w.notifyAdmissionCancelled(recordID, err)
		return err
	}

	w.closeLock.RLock()
	defer w.closeLock.RUnlock()
	if w.closed {
		w.gate.Release()
		w.meter.IncrementCount(types.MetricTasksRejected)
		return ErrWireClosed
	}

	reg := w.barrier.Register()
	w.meter.IncrementCount(types.MetricTasksSubmitted)
	w.pool.Submit(func() {
		w.convert(recordID, reg)
	})
	return nil
}
