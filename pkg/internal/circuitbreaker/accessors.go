package circuitbreaker

import "github.com/joeydtaylor/switchboard/pkg/internal/types"

// State returns the current state without applying the reset timeout.
func (cb *CircuitBreaker) State() types.CircuitState {
	cb.stateLock.Lock()
	defer cb.stateLock.Unlock()
	return cb.state
}

// ConsecutiveFailures returns the current consecutive failure count.
func (cb *CircuitBreaker) ConsecutiveFailures() int {
	cb.stateLock.Lock()
	defer cb.stateLock.Unlock()
	return int(cb.consecutive)
}

// NotifyOnReset returns a channel signaled when the breaker closes after being open.
func (cb *CircuitBreaker) NotifyOnReset() <-chan struct{} {
	return cb.resetNotifyChan
}

// GetComponentMetadata returns the circuit breaker metadata.
func (cb *CircuitBreaker) GetComponentMetadata() types.ComponentMetadata {
	return cb.snapshotMetadata()
}
