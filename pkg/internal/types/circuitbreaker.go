package types

import "errors"

// ErrCircuitOpen is returned when an operation is rejected because the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState is the externally visible state of a circuit breaker.
type CircuitState int32

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
)

func (s CircuitState) String() string {
	if s == CircuitOpen {
		return "OPEN"
	}
	return "CLOSED"
}

// CircuitBreaker guards a sink against repeated failures. Consecutive failures trip the breaker;
// after the reset timeout it allows traffic again.
type CircuitBreaker interface {
	// IsOpen reports whether calls must be rejected. When the breaker is open and the reset timeout
	// has elapsed, IsOpen transitions it back to closed and returns false. Call it immediately
	// before every sink I/O.
	IsOpen() bool

	// RecordSuccess resets the consecutive failure count.
	RecordSuccess()

	// RecordFailure increments the consecutive failure count and trips the breaker at the threshold.
	RecordFailure()

	// Reset forces the breaker closed and clears the failure count.
	Reset()

	State() CircuitState
	ConsecutiveFailures() int

	// NotifyOnReset provides a channel that emits a notification when the circuit breaker resets.
	NotifyOnReset() <-chan struct{}

	ConnectLogger(...Logger)
	NotifyLoggers(level LogLevel, msg string, keysAndValues ...interface{})
	GetComponentMetadata() ComponentMetadata
	SetComponentMetadata(name string, id string)
}
