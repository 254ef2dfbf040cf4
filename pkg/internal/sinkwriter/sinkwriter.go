// Package sinkwriter drains one sink's capacitor into batched writes.
//
// The batch is confined to the writer goroutine. A batch is written when it reaches the configured
// size, when its oldest payload has waited maxWait, when a flush marker arrives, or on shutdown.
// Each write is paced by the optional rate limiter, guarded by the circuit breaker and retried with
// exponential backoff. A batch that cannot be written is counted as permanently failed and is never
// re-queued.
package sinkwriter

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/circuitbreaker"
	"github.com/joeydtaylor/switchboard/pkg/internal/meter"
	"github.com/joeydtaylor/switchboard/pkg/internal/surgeprotector"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
)

type SinkWriter struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	configLock        sync.Mutex

	name    string
	client  types.SinkClient
	input   types.Capacitor[types.WorkItem]
	breaker types.CircuitBreaker
	limiter types.SurgeProtector
	meter   types.Meter

	batchSize    int
	maxWait      time.Duration
	pollInterval time.Duration

	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	batch      []types.Payload
	batchStart time.Time

	started int32
	done    chan struct{}
}

// NewSinkWriter builds a writer for client that consumes input. Defaults follow
// types.DefaultPipelineConfig.
func NewSinkWriter(name string, client types.SinkClient, input types.Capacitor[types.WorkItem], options ...types.Option[*SinkWriter]) *SinkWriter {
	d := types.DefaultPipelineConfig()
	w := &SinkWriter{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "SINK_WRITER",
			Name: name,
		},
		name:           name,
		client:         client,
		input:          input,
		batchSize:      d.BatchSize,
		maxWait:        d.MaxWait,
		pollInterval:   d.PollInterval,
		maxRetries:     d.MaxRetries,
		initialBackoff: d.RetryInitialBackoff,
		maxBackoff:     d.RetryMaxBackoff,
		done:           make(chan struct{}),
	}

	for _, opt := range options {
		opt(w)
	}

	if w.breaker == nil {
		w.breaker = circuitbreaker.NewCircuitBreaker(d.BreakerMaxConsecutiveFailures, d.BreakerResetTimeout,
			circuitbreaker.WithComponentMetadata(name, ""))
	}
	if w.limiter == nil {
		w.limiter = surgeprotector.NewSurgeProtector()
	}
	if w.meter == nil {
		w.meter = meter.NewMeter()
	}
	w.meter.RegisterSink(name)
	w.batch = make([]types.Payload, 0, w.batchSize)
	return w
}

// Start launches the writer loop once. Later calls are no-ops.
func (w *SinkWriter) Start(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&w.started, 0, 1) {
		return
	}
	go w.Run(ctx)
}

// Run consumes the input until the shutdown sentinel or until ctx ends. On cancellation the
// partial batch is counted as permanently failed.
func (w *SinkWriter) Run(ctx context.Context) {
	defer close(w.done)
	w.notifyStart()

	for {
		if err := ctx.Err(); err != nil {
			w.abandon(err)
			return
		}

		if w.batchExpired() {
			w.flush(ctx, "max_wait")
		}

		item, ok := w.input.Poll(w.nextWait())
		if !ok {
			continue
		}

		switch item.Kind {
		case types.ItemPayload:
			w.append(ctx, *item.Payload)
		case types.ItemFlush:
			w.flush(ctx, "marker")
			item.Marker.Arrive()
		case types.ItemShutdown:
			w.flush(ctx, "shutdown")
			w.notifyStop()
			return
		}
	}
}

func (w *SinkWriter) append(ctx context.Context, p types.Payload) {
	if len(w.batch) == 0 {
		w.batchStart = time.Now()
	}
	w.batch = append(w.batch, p)

	switch {
	case len(w.batch) >= w.batchSize:
		w.flush(ctx, "size")
	case w.batchExpired():
		w.flush(ctx, "max_wait")
	}
}

func (w *SinkWriter) batchExpired() bool {
	return len(w.batch) > 0 && time.Since(w.batchStart) >= w.maxWait
}

// nextWait bounds the poll so a partial batch is written close to its deadline.
func (w *SinkWriter) nextWait() time.Duration {
	wait := w.pollInterval
	if len(w.batch) > 0 {
		if remaining := w.maxWait - time.Since(w.batchStart); remaining < wait {
			wait = remaining
		}
	}
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	return wait
}

func (w *SinkWriter) abandon(err error) {
	if n := len(w.batch); n > 0 {
		w.meter.AddSinkCount(w.name, types.MetricSinkFailed, uint64(n))
		w.notifyBatchFailed(n, 0, err)
		w.batch = w.batch[:0]
	}
}

// Done is closed when Run returns.
func (w *SinkWriter) Done() <-chan struct{} { return w.done }

func (w *SinkWriter) Name() string { return w.name }

// Breaker returns the circuit breaker guarding this sink.
func (w *SinkWriter) Breaker() types.CircuitBreaker { return w.breaker }

// Client returns the sink client.
func (w *SinkWriter) Client() types.SinkClient { return w.client }

// Stats returns the sink's counters together with its breaker state.
func (w *SinkWriter) Stats() types.SinkStats {
	return types.SinkStats{
		Name:                w.name,
		Written:             w.meter.GetSinkCount(w.name, types.MetricSinkWritten),
		FailedPermanently:   w.meter.GetSinkCount(w.name, types.MetricSinkFailed),
		Batches:             w.meter.GetSinkCount(w.name, types.MetricSinkBatches),
		Retries:             w.meter.GetSinkCount(w.name, types.MetricSinkRetries),
		Rejected:            w.meter.GetSinkCount(w.name, types.MetricSinkRejected),
		CircuitState:        w.breaker.State(),
		ConsecutiveFailures: w.breaker.ConsecutiveFailures(),
	}
}
