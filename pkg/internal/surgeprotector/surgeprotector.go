// Package surgeprotector keeps the pipeline inside its operating envelope: an in-flight
// permit gate bounds concurrent conversions, and an optional token bucket paces sink writes.
package surgeprotector

import (
	"sync"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

type SurgeProtector struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	configLock        sync.Mutex

	maxInFlight int64
	permits     *semaphore.Weighted
	inFlight    int64
	peak        int64

	limiter *rate.Limiter
}

// NewSurgeProtector returns a surge protector with no bounds; configure it with options.
func NewSurgeProtector(options ...types.Option[types.SurgeProtector]) types.SurgeProtector {
	sp := &SurgeProtector{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "SURGE_PROTECTOR",
		},
	}

	for _, option := range options {
		option(sp)
	}

	sp.NotifyLoggers(types.DebugLevel, "Surge protector created",
		"component", sp.snapshotMetadata(),
		"event", "Create",
		"maxInFlight", sp.MaxInFlight(),
		"rateLimited", sp.IsRateLimited(),
	)
	return sp
}
