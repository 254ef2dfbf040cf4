package internallogger

import "github.com/joeydtaylor/switchboard/pkg/internal/types"

type levelChecker interface {
	IsLevelEnabled(types.LogLevel) bool
}

// Notify dispatches one entry to every logger whose level admits it. Components call it from
// their NotifyLoggers method with a snapshot of their attached loggers.
func Notify(loggers []types.Logger, level types.LogLevel, msg string, keysAndValues ...interface{}) {
	for _, logger := range loggers {
		if logger == nil {
			continue
		}
		if lc, ok := logger.(levelChecker); ok {
			if !lc.IsLevelEnabled(level) {
				continue
			}
		} else if logger.GetLevel() > level {
			continue
		}

		switch level {
		case types.DebugLevel:
			logger.Debug(msg, keysAndValues...)
		case types.InfoLevel:
			logger.Info(msg, keysAndValues...)
		case types.WarnLevel:
			logger.Warn(msg, keysAndValues...)
		case types.ErrorLevel:
			logger.Error(msg, keysAndValues...)
		case types.DPanicLevel:
			logger.DPanic(msg, keysAndValues...)
		case types.PanicLevel:
			logger.Panic(msg, keysAndValues...)
		case types.FatalLevel:
			logger.Fatal(msg, keysAndValues...)
		}
	}
}
