package types

import "context"

// SurgeProtector bounds the work admitted into the pipeline and paces sink writes.
type SurgeProtector interface {
	// Acquire blocks until an in-flight permit is available or ctx is done. On cancellation no
	// permit is held and ctx.Err() is returned.
	Acquire(ctx context.Context) error

	// Release returns a permit obtained by Acquire.
	Release()

	// Wait blocks until the write-rate limiter grants a token. It returns immediately when no
	// rate limit is configured.
	Wait(ctx context.Context) error

	// SetMaxInFlight bounds concurrent admissions; zero disables the bound. Configure before use.
	SetMaxInFlight(n int64)

	// SetRateLimit paces Wait at perSecond tokens with the given burst; zero disables pacing.
	SetRateLimit(perSecond float64, burst int)

	InFlight() int64
	PeakInFlight() int64
	MaxInFlight() int64
	IsRateLimited() bool

	ConnectLogger(...Logger)
	NotifyLoggers(level LogLevel, msg string, keysAndValues ...interface{})
	GetComponentMetadata() ComponentMetadata
	SetComponentMetadata(name string, id string)
}
