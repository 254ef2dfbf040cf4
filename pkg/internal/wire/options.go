package wire

import (
	"github.com/joeydtaylor/switchboard/pkg/internal/barrier"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// WithConversionThreads sets the number of pool workers.
func WithConversionThreads(n int) types.Option[*Wire] {
	return func(w *Wire) {
		if n > 0 {
			w.threads = n
		}
	}
}

// WithQueueCapacity sets how many scheduled tasks may wait for a worker. Size it to the admission
// bound so Submit never blocks on the pool itself.
func WithQueueCapacity(n int) types.Option[*Wire] {
	return func(w *Wire) {
		w.queueCapacity = n
	}
}

func WithSurgeProtector(sp types.SurgeProtector) types.Option[*Wire] {
	return func(w *Wire) {
		w.gate = sp
	}
}

func WithBarrier(b *barrier.Barrier) types.Option[*Wire] {
	return func(w *Wire) {
		w.barrier = b
	}
}

func WithMeter(m types.Meter) types.Option[*Wire] {
	return func(w *Wire) {
		w.meter = m
	}
}

func WithLogger(logger ...types.Logger) types.Option[*Wire] {
	return func(w *Wire) {
		w.ConnectLogger(logger...)
	}
}

func WithComponentMetadata(name string, id string) types.Option[*Wire] {
	return func(w *Wire) {
		w.SetComponentMetadata(name, id)
	}
}
