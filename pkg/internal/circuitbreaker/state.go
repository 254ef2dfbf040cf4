package circuitbreaker

import (
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

// IsOpen reports whether the sink must be bypassed. It has a side effect: an open breaker whose
// reset timeout has elapsed is closed, and the caller is allowed through. With single-probe
// enabled only that caller is allowed until it records success or failure.
func (cb *CircuitBreaker) IsOpen() bool {
	now := time.Now()

	cb.stateLock.Lock()
	if cb.state == types.CircuitClosed {
		blocked := cb.singleProbe && cb.probeInFlight
		cb.stateLock.Unlock()
		return blocked
	}
	if now.Sub(cb.openedAt) < cb.resetTimeout {
		cb.stateLock.Unlock()
		return true
	}
	cb.state = types.CircuitClosed
	cb.consecutive = 0
	cb.probeInFlight = cb.singleProbe
	cb.stateLock.Unlock()

	cb.signalReset()
	cb.NotifyLoggers(types.InfoLevel, "Circuit breaker reset",
		"component", cb.snapshotMetadata(),
		"event", "Reset",
		"result", logschema.ResultSuccess,
		"auto", true,
	)
	return false
}

// RecordSuccess clears the consecutive failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.stateLock.Lock()
	cb.consecutive = 0
	cb.probeInFlight = false
	cb.stateLock.Unlock()
}

// RecordFailure counts a failure and opens the breaker when the threshold is reached. A failed
// single probe reopens the breaker immediately.
func (cb *CircuitBreaker) RecordFailure() {
	now := time.Now()

	cb.stateLock.Lock()
	cb.consecutive++
	failures := cb.consecutive
	shouldTrip := cb.state == types.CircuitClosed && (cb.probeInFlight || failures >= cb.maxFailures)
	cb.probeInFlight = false
	if shouldTrip {
		cb.state = types.CircuitOpen
		cb.openedAt = now
	}
	cb.stateLock.Unlock()

	metadata := cb.snapshotMetadata()
	cb.NotifyLoggers(types.DebugLevel, "Circuit breaker recorded failure",
		"component", metadata,
		"event", "RecordFailure",
		"consecutiveFailures", failures,
		"maxConsecutiveFailures", cb.maxFailures,
	)
	if shouldTrip {
		cb.NotifyLoggers(types.WarnLevel, "Circuit breaker tripped",
			"component", metadata,
			"event", "Trip",
			"result", logschema.ResultFailure,
			"consecutiveFailures", failures,
			"nextReset", now.Add(cb.resetTimeout),
		)
	}
}

// Reset forces the breaker closed.
func (cb *CircuitBreaker) Reset() {
	cb.stateLock.Lock()
	wasOpen := cb.state == types.CircuitOpen
	cb.state = types.CircuitClosed
	cb.consecutive = 0
	cb.probeInFlight = false
	cb.stateLock.Unlock()

	if !wasOpen {
		return
	}
	cb.signalReset()
	cb.NotifyLoggers(types.InfoLevel, "Circuit breaker reset",
		"component", cb.snapshotMetadata(),
		"event", "Reset",
		"result", logschema.ResultSuccess,
		"auto", false,
	)
}
