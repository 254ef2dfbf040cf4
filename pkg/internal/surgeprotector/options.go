package surgeprotector

import "github.com/joeydtaylor/switchboard/pkg/internal/types"

// WithMaxInFlight bounds the number of concurrently admitted tasks.
func WithMaxInFlight(n int) types.Option[types.SurgeProtector] {
	return func(sp types.SurgeProtector) {
		sp.SetMaxInFlight(int64(n))
	}
}

// WithRateLimit paces Wait callers at perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) types.Option[types.SurgeProtector] {
	return func(sp types.SurgeProtector) {
		sp.SetRateLimit(perSecond, burst)
	}
}

func WithLogger(logger ...types.Logger) types.Option[types.SurgeProtector] {
	return func(sp types.SurgeProtector) {
		sp.ConnectLogger(logger...)
	}
}

func WithComponentMetadata(name string, id string) types.Option[types.SurgeProtector] {
	return func(sp types.SurgeProtector) {
		sp.SetComponentMetadata(name, id)
	}
}
