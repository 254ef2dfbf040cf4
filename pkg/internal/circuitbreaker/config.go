package circuitbreaker

import "github.com/joeydtaylor/switchboard/pkg/internal/types"

// SetComponentMetadata updates the circuit breaker name and id.
func (cb *CircuitBreaker) SetComponentMetadata(name string, id string) {
	cb.configLock.Lock()
	cb.componentMetadata = types.ComponentMetadata{Name: name, ID: id, Type: cb.componentMetadata.Type}
	cb.configLock.Unlock()
}

// SetSingleProbe toggles the half-open gate.
func (cb *CircuitBreaker) SetSingleProbe(enabled bool) {
	cb.stateLock.Lock()
	cb.singleProbe = enabled
	if !enabled {
		cb.probeInFlight = false
	}
	cb.stateLock.Unlock()
}

// ConnectLogger attaches loggers to the circuit breaker.
func (cb *CircuitBreaker) ConnectLogger(loggers ...types.Logger) {
	cb.configLock.Lock()
	for _, l := range loggers {
		if l != nil {
			cb.loggers = append(cb.loggers, l)
		}
	}
	cb.configLock.Unlock()
}
