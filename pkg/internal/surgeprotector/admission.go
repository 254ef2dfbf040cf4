package surgeprotector

import (
	"context"
	"sync/atomic"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

// Acquire blocks until a permit is available. A cancelled wait holds no permit.
func (sp *SurgeProtector) Acquire(ctx context.Context) error {
	if permits := sp.snapshotPermits(); permits != nil {
		if err := permits.Acquire(ctx, 1); err != nil {
			sp.NotifyLoggers(types.DebugLevel, "Admission cancelled",
				"component", sp.snapshotMetadata(),
				"event", "Acquire",
				"result", logschema.ResultCancelled,
				"error", err,
			)
			return err
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	n := atomic.AddInt64(&sp.inFlight, 1)
	for {
		peak := atomic.LoadInt64(&sp.peak)
		if n <= peak || atomic.CompareAndSwapInt64(&sp.peak, peak, n) {
			break
		}
	}
	return nil
}

// Release returns a permit. Releasing without a held permit is logged and ignored.
func (sp *SurgeProtector) Release() {
	if atomic.AddInt64(&sp.inFlight, -1) < 0 {
		atomic.AddInt64(&sp.inFlight, 1)
		sp.NotifyLoggers(types.ErrorLevel, "Release without a held permit",
			"component", sp.snapshotMetadata(),
			"event", "Release",
			"result", logschema.ResultFailure,
		)
		return
	}
	if permits := sp.snapshotPermits(); permits != nil {
		permits.Release(1)
	}
}

// InFlight returns the number of permits currently held.
func (sp *SurgeProtector) InFlight() int64 {
	return atomic.LoadInt64(&sp.inFlight)
}

// PeakInFlight returns the highest number of permits held at once.
func (sp *SurgeProtector) PeakInFlight() int64 {
	return atomic.LoadInt64(&sp.peak)
}
