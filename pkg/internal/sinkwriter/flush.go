package sinkwriter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// flush writes the current batch and always leaves the writer with an empty one.
func (w *SinkWriter) flush(ctx context.Context, reason string) {
	if len(w.batch) == 0 {
		return
	}
	batch := w.batch
	w.batch = make([]types.Payload, 0, w.batchSize)
	w.batchStart = time.Time{}

	n := uint64(len(batch))
	w.meter.AddSinkCount(w.name, types.MetricSinkBatches, 1)

	if err := w.limiter.Wait(ctx); err != nil {
		w.meter.AddSinkCount(w.name, types.MetricSinkFailed, n)
		w.notifyBatchFailed(len(batch), 0, fmt.Errorf("sinkwriter %s: rate limiter: %w", w.name, err))
		return
	}

	start := time.Now()
	attempts, err := w.write(ctx, batch)
	if err == nil {
		w.meter.AddSinkCount(w.name, types.MetricSinkWritten, n)
		w.notifyBatchWritten(len(batch), attempts, reason, time.Since(start))
		return
	}

	if attempts == 0 && errors.Is(err, types.ErrCircuitOpen) {
		w.meter.AddSinkCount(w.name, types.MetricSinkRejected, n)
	}
	w.meter.AddSinkCount(w.name, types.MetricSinkFailed, n)
	w.notifyBatchFailed(len(batch), attempts, err)
}

// write attempts the batch until it succeeds, the retry budget is spent or the breaker opens. The
// breaker is consulted immediately before every attempt.
func (w *SinkWriter) write(ctx context.Context, batch []types.Payload) (int, error) {
	attempts := 0
	op := func() error {
		if w.breaker.IsOpen() {
			return backoff.Permanent(types.ErrCircuitOpen)
		}
		attempts++
		if err := w.client.WriteBatch(ctx, batch); err != nil {
			w.breaker.RecordFailure()
			return fmt.Errorf("sinkwriter %s: write batch: %w", w.name, err)
		}
		w.breaker.RecordSuccess()
		return nil
	}

	notify := func(err error, next time.Duration) {
		w.meter.AddSinkCount(w.name, types.MetricSinkRetries, 1)
		w.notifyRetry(len(batch), attempts, next, err)
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(w.newBackOff(), uint64(w.maxRetries)), ctx), notify)
	return attempts, err
}

func (w *SinkWriter) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.initialBackoff
	b.MaxInterval = w.maxBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
