package surgeprotector

import (
	"context"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

// Wait blocks until the limiter grants a token.
func (sp *SurgeProtector) Wait(ctx context.Context) error {
	limiter := sp.snapshotLimiter()
	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		sp.NotifyLoggers(types.DebugLevel, "Rate limit wait aborted",
			"component", sp.snapshotMetadata(),
			"event", "Wait",
			"result", logschema.ResultCancelled,
			"error", err,
		)
		return err
	}
	return nil
}

// IsRateLimited reports whether a write-rate limit is configured.
func (sp *SurgeProtector) IsRateLimited() bool {
	return sp.snapshotLimiter() != nil
}
