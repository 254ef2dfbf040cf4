package circuitbreaker

import (
	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// NotifyLoggers emits a log entry to all configured loggers.
func (cb *CircuitBreaker) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	internallogger.Notify(cb.snapshotLoggers(), level, msg, keysAndValues...)
}

func (cb *CircuitBreaker) snapshotLoggers() []types.Logger {
	cb.configLock.Lock()
	loggers := append([]types.Logger(nil), cb.loggers...)
	cb.configLock.Unlock()
	return loggers
}

func (cb *CircuitBreaker) snapshotMetadata() types.ComponentMetadata {
	cb.configLock.Lock()
	metadata := cb.componentMetadata
	cb.configLock.Unlock()
	return metadata
}

func (cb *CircuitBreaker) signalReset() {
	select {
	case cb.resetNotifyChan <- struct{}{}:
	default:
	}
}
