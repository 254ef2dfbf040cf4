// Package circuitbreaker guards a sink against repeated failures. After a configured number of
// consecutive failures the breaker opens and rejects calls until a reset timeout elapses, at
// which point the next IsOpen call closes it again.
package circuitbreaker

import (
	"sync"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
)

// CircuitBreaker is a two-state (CLOSED/OPEN) breaker with an optional single-probe half-open
// gate.
type CircuitBreaker struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	configLock        sync.Mutex

	stateLock     sync.Mutex
	state         types.CircuitState
	consecutive   int32
	maxFailures   int32
	resetTimeout  time.Duration
	openedAt      time.Time
	singleProbe   bool
	probeInFlight bool

	resetNotifyChan chan struct{}
}

// NewCircuitBreaker returns a closed breaker that opens after maxConsecutiveFailures consecutive
// failures and allows traffic again once resetTimeout has elapsed.
func NewCircuitBreaker(maxConsecutiveFailures int, resetTimeout time.Duration, options ...types.Option[types.CircuitBreaker]) types.CircuitBreaker {
	if maxConsecutiveFailures <= 0 {
		maxConsecutiveFailures = 1
	}
	cb := &CircuitBreaker{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "CIRCUIT_BREAKER",
		},
		state:           types.CircuitClosed,
		maxFailures:     int32(maxConsecutiveFailures),
		resetTimeout:    resetTimeout,
		resetNotifyChan: make(chan struct{}, 1),
	}

	for _, option := range options {
		option(cb)
	}

	cb.NotifyLoggers(types.DebugLevel, "Circuit breaker created",
		"component", cb.snapshotMetadata(),
		"event", "Create",
		"maxConsecutiveFailures", maxConsecutiveFailures,
		"resetTimeout", resetTimeout,
	)
	return cb
}
