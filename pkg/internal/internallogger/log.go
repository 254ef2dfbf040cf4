package internallogger

import (
	"fmt"
	"strings"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"go.uber.org/zap"
)

// Log emits a log entry at the requested level. keysAndValues are read pairwise; pairs with a
// non-string key and a trailing odd value are dropped.
func (z *ZapLoggerAdapter) Log(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	z.mu.Lock()
	logger := z.logger
	z.mu.Unlock()

	if logger == nil {
		return
	}

	ce := logger.Check(ConvertLevel(level), msg)
	if ce == nil {
		return
	}
	ce.Write(toFields(keysAndValues)...)
}

func toFields(keysAndValues []interface{}) []zap.Field {
	limit := len(keysAndValues) &^ 1
	fields := make([]zap.Field, 0, limit/2)
	for i := 0; i < limit; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, toField(key, keysAndValues[i+1]))
	}
	return fields
}

func toField(key string, value interface{}) zap.Field {
	switch v := value.(type) {
	case nil:
		return zap.Skip()
	case types.ComponentMetadata:
		return zap.Any(key, componentToLogMap(v))
	case *types.ComponentMetadata:
		if v == nil {
			return zap.Skip()
		}
		return zap.Any(key, componentToLogMap(*v))
	case error:
		return zap.NamedError(key, v)
	case time.Duration:
		return zap.Duration(key, v)
	case fmt.Stringer:
		return zap.Stringer(key, v)
	default:
		return zap.Any(key, v)
	}
}

func componentToLogMap(meta types.ComponentMetadata) map[string]string {
	return map[string]string{
		"id":   meta.ID,
		"type": meta.Type,
		"name": meta.Name,
	}
}

func (z *ZapLoggerAdapter) Debug(msg string, keysAndValues ...interface{}) {
	z.Log(types.DebugLevel, msg, keysAndValues...)
}

func (z *ZapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	z.Log(types.InfoLevel, msg, keysAndValues...)
}

func (z *ZapLoggerAdapter) Warn(msg string, keysAndValues ...interface{}) {
	z.Log(types.WarnLevel, msg, keysAndValues...)
}

func (z *ZapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	z.Log(types.ErrorLevel, msg, keysAndValues...)
}

func (z *ZapLoggerAdapter) DPanic(msg string, keysAndValues ...interface{}) {
	z.Log(types.DPanicLevel, msg, keysAndValues...)
}

func (z *ZapLoggerAdapter) Panic(msg string, keysAndValues ...interface{}) {
	z.Log(types.PanicLevel, msg, keysAndValues...)
}

func (z *ZapLoggerAdapter) Fatal(msg string, keysAndValues ...interface{}) {
	z.Log(types.FatalLevel, msg, keysAndValues...)
}

// GetLevel returns the configured minimum level.
func (z *ZapLoggerAdapter) GetLevel() types.LogLevel {
	return convertZapLevel(z.atomicLevel.Level())
}

// SetLevel updates the minimum level for every sink.
func (z *ZapLoggerAdapter) SetLevel(level types.LogLevel) {
	z.atomicLevel.SetLevel(ConvertLevel(level))
}

// IsLevelEnabled reports whether entries at level would be written.
func (z *ZapLoggerAdapter) IsLevelEnabled(level types.LogLevel) bool {
	return z.atomicLevel.Enabled(ConvertLevel(level))
}

// Flush syncs the logger's outputs. Sync errors from terminals are ignored.
func (z *ZapLoggerAdapter) Flush() error {
	z.mu.Lock()
	logger := z.logger
	z.mu.Unlock()

	if logger == nil {
		return nil
	}
	if err := logger.Sync(); err != nil {
		msg := err.Error()
		if strings.Contains(msg, "inappropriate ioctl for device") ||
			strings.Contains(msg, "bad file descriptor") ||
			strings.Contains(msg, "invalid argument") {
			return nil
		}
		return err
	}
	return nil
}
