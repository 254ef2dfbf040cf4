package sinkwriter

import (
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/surgeprotector"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

func WithBatchSize(n int) types.Option[*SinkWriter] {
	return func(w *SinkWriter) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithMaxWait bounds how long the oldest payload of a partial batch may wait.
func WithMaxWait(d time.Duration) types.Option[*SinkWriter] {
	return func(w *SinkWriter) {
		if d > 0 {
			w.maxWait = d
		}
	}
}

func WithPollInterval(d time.Duration) types.Option[*SinkWriter] {
	return func(w *SinkWriter) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithRetry sets the number of re-attempts after the first write and the backoff bounds.
func WithRetry(maxRetries int, initial, maxBackoff time.Duration) types.Option[*SinkWriter] {
	return func(w *SinkWriter) {
		if maxRetries >= 0 {
			w.maxRetries = maxRetries
		}
		if initial > 0 {
			w.initialBackoff = initial
		}
		if maxBackoff > 0 {
			w.maxBackoff = maxBackoff
		}
	}
}

func WithCircuitBreaker(cb types.CircuitBreaker) types.Option[*SinkWriter] {
	return func(w *SinkWriter) {
		w.breaker = cb
	}
}

// WithRateLimit paces batch writes at perSecond with the given burst. Zero disables pacing.
func WithRateLimit(perSecond float64, burst int) types.Option[*SinkWriter] {
	return func(w *SinkWriter) {
		w.limiter = surgeprotector.NewSurgeProtector(
			surgeprotector.WithRateLimit(perSecond, burst),
			surgeprotector.WithComponentMetadata(w.name+"-rate", ""),
		)
	}
}

func WithMeter(m types.Meter) types.Option[*SinkWriter] {
	return func(w *SinkWriter) {
		w.meter = m
	}
}

func WithLogger(logger ...types.Logger) types.Option[*SinkWriter] {
	return func(w *SinkWriter) {
		w.ConnectLogger(logger...)
	}
}

func WithComponentMetadata(name string, id string) types.Option[*SinkWriter] {
	return func(w *SinkWriter) {
		w.SetComponentMetadata(name, id)
	}
}
