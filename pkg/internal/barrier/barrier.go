// Package barrier tracks in-flight conversion tasks so a flush can wait for exactly the work
// submitted before it. Each AwaitQuiescence call closes the current phase; registrations made
// afterwards belong to the next phase and are not waited for.
package barrier

import (
	"context"
	"sync"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

type Barrier struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger

	mu          sync.Mutex
	phase       uint64
	pending     map[uint64]int64
	outstanding int64
	changed     chan struct{}
}

// Registration is the handle a task uses to leave the barrier.
type Registration struct {
	barrier *Barrier
	phase   uint64
	once    sync.Once
}

func NewBarrier(options ...types.Option[*Barrier]) *Barrier {
	b := &Barrier{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "BARRIER",
		},
		pending: make(map[uint64]int64),
		changed: make(chan struct{}),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// Register adds one outstanding task to the current phase. Call it on the submitting goroutine
// before the task is scheduled.
func (b *Barrier) Register() *Registration {
	b.mu.Lock()
	phase := b.phase
	b.pending[phase]++
	b.outstanding++
	b.mu.Unlock()
	return &Registration{barrier: b, phase: phase}
}

// ArriveAndDeregister removes the task from the barrier. Calls after the first are no-ops.
func (r *Registration) ArriveAndDeregister() {
	r.once.Do(func() {
		r.barrier.deregister(r.phase)
	})
}

func (b *Barrier) deregister(phase uint64) {
	b.mu.Lock()
	b.pending[phase]--
	if b.pending[phase] <= 0 {
		delete(b.pending, phase)
	}
	b.outstanding--
	close(b.changed)
	b.changed = make(chan struct{})
	b.mu.Unlock()
}

// AwaitQuiescence waits until every task registered before the call has deregistered. It returns
// false if timeout elapses or ctx is done first. A non-positive timeout waits on ctx alone.
func (b *Barrier) AwaitQuiescence(ctx context.Context, timeout time.Duration) bool {
	b.mu.Lock()
	target := b.phase
	b.phase++
	b.mu.Unlock()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	start := time.Now()
	for {
		b.mu.Lock()
		remaining := b.pendingThroughLocked(target)
		changed := b.changed
		b.mu.Unlock()

		if remaining == 0 {
			return true
		}

		select {
		case <-changed:
		case <-expired:
			b.NotifyLoggers(types.WarnLevel, "Quiescence wait timed out",
				"component", b.GetComponentMetadata(),
				"event", "AwaitQuiescence",
				"result", logschema.ResultTimeout,
				"remaining", remaining,
				"waited", time.Since(start),
			)
			return false
		case <-ctx.Done():
			b.NotifyLoggers(types.WarnLevel, "Quiescence wait cancelled",
				"component", b.GetComponentMetadata(),
				"event", "AwaitQuiescence",
				"result", logschema.ResultCancelled,
				"remaining", remaining,
				"error", ctx.Err(),
			)
			return false
		}
	}
}

func (b *Barrier) pendingThroughLocked(target uint64) int64 {
	var n int64
	for phase, count := range b.pending {
		if phase <= target {
			n += count
		}
	}
	return n
}

// Outstanding returns the number of registered tasks that have not deregistered.
func (b *Barrier) Outstanding() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outstanding
}

func (b *Barrier) ConnectLogger(loggers ...types.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range loggers {
		if l != nil {
			b.loggers = append(b.loggers, l)
		}
	}
}

func (b *Barrier) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	b.mu.Lock()
	loggers := append([]types.Logger(nil), b.loggers...)
	b.mu.Unlock()
	internallogger.Notify(loggers, level, msg, keysAndValues...)
}

func (b *Barrier) GetComponentMetadata() types.ComponentMetadata {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.componentMetadata
}

func (b *Barrier) SetComponentMetadata(name string, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.componentMetadata.Name = name
	if id != "" {
		b.componentMetadata.ID = id
	}
}

// WithLogger attaches loggers to the barrier.
func WithLogger(logger ...types.Logger) types.Option[*Barrier] {
	return func(b *Barrier) {
		b.ConnectLogger(logger...)
	}
}

func WithComponentMetadata(name string, id string) types.Option[*Barrier] {
	return func(b *Barrier) {
		b.SetComponentMetadata(name, id)
	}
}
