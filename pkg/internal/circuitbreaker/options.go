package circuitbreaker

import "github.com/joeydtaylor/switchboard/pkg/internal/types"

// WithLogger attaches a logger to the breaker.
func WithLogger(logger ...types.Logger) types.Option[types.CircuitBreaker] {
	return func(cb types.CircuitBreaker) {
		cb.ConnectLogger(logger...)
	}
}

// WithComponentMetadata sets the breaker name and id.
func WithComponentMetadata(name string, id string) types.Option[types.CircuitBreaker] {
	return func(cb types.CircuitBreaker) {
		cb.SetComponentMetadata(name, id)
	}
}

// WithSingleProbe lets exactly one caller through after the reset timeout. The breaker stays
// gated until that caller records success or failure.
func WithSingleProbe(enabled bool) types.Option[types.CircuitBreaker] {
	return func(cb types.CircuitBreaker) {
		if p, ok := cb.(interface{ SetSingleProbe(bool) }); ok {
			p.SetSingleProbe(enabled)
		}
	}
}
