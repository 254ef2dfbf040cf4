package surgeprotector

import (
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// NotifyLoggers emits a log entry to all configured loggers.
func (sp *SurgeProtector) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	sp.configLock.Lock()
	loggers := append([]types.Logger(nil), sp.loggers...)
	sp.configLock.Unlock()
	internallogger.Notify(loggers, level, msg, keysAndValues...)
}

func (sp *SurgeProtector) snapshotMetadata() types.ComponentMetadata {
	sp.configLock.Lock()
	defer sp.configLock.Unlock()
	return sp.componentMetadata
}

func (sp *SurgeProtector) snapshotPermits() *semaphore.Weighted {
	sp.configLock.Lock()
	defer sp.configLock.Unlock()
	return sp.permits
}

func (sp *SurgeProtector) snapshotLimiter() *rate.Limiter {
	sp.configLock.Lock()
	defer sp.configLock.Unlock()
	return sp.limiter
}
