package internallogger

import (
	"github.com/joeydtaylor/switchboard/pkg/logschema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerWithLevel sets the minimum level from its name. Unknown names mean info.
func LoggerWithLevel(levelStr string) LoggerOption {
	return func(cfg *zap.Config, lvl *zapcore.Level, callerDepth *int) {
		converted := ConvertLevel(parseLogLevel(levelStr))
		cfg.Level = zap.NewAtomicLevelAt(converted)
		*lvl = converted
	}
}

// LoggerWithDevelopment toggles zap development mode.
func LoggerWithDevelopment(dev bool) LoggerOption {
	return func(cfg *zap.Config, lvl *zapcore.Level, callerDepth *int) {
		cfg.Development = dev
	}
}

// LoggerWithFields attaches fields to every log line.
func LoggerWithFields(fields map[string]interface{}) LoggerOption {
	return func(cfg *zap.Config, lvl *zapcore.Level, callerDepth *int) {
		if cfg.InitialFields == nil {
			cfg.InitialFields = map[string]interface{}{}
		}
		for key, value := range fields {
			if key == "" {
				continue
			}
			cfg.InitialFields[key] = value
		}
	}
}

// LoggerWithSchema overrides the log schema identifier field.
func LoggerWithSchema(schema string) LoggerOption {
	return LoggerWithFields(map[string]interface{}{logschema.FieldSchema: schema})
}

// LoggerWithoutCaller drops the caller field.
func LoggerWithoutCaller() LoggerOption {
	return func(cfg *zap.Config, lvl *zapcore.Level, callerDepth *int) {
		cfg.DisableCaller = true
	}
}

// ZapAdapterWithCallerSkip adds caller frames to skip.
func ZapAdapterWithCallerSkip(skip int) LoggerOption {
	return func(cfg *zap.Config, lvl *zapcore.Level, callerDepth *int) {
		*callerDepth += skip
	}
}
