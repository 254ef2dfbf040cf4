package internallogger

import (
	"strings"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"go.uber.org/zap/zapcore"
)

var levelNames = map[string]types.LogLevel{
	"debug":  types.DebugLevel,
	"info":   types.InfoLevel,
	"warn":   types.WarnLevel,
	"error":  types.ErrorLevel,
	"dpanic": types.DPanicLevel,
	"panic":  types.PanicLevel,
	"fatal":  types.FatalLevel,
}

var zapLevels = map[types.LogLevel]zapcore.Level{
	types.DebugLevel:  zapcore.DebugLevel,
	types.InfoLevel:   zapcore.InfoLevel,
	types.WarnLevel:   zapcore.WarnLevel,
	types.ErrorLevel:  zapcore.ErrorLevel,
	types.DPanicLevel: zapcore.DPanicLevel,
	types.PanicLevel:  zapcore.PanicLevel,
	types.FatalLevel:  zapcore.FatalLevel,
}

func parseLogLevel(levelStr string) types.LogLevel {
	if level, ok := levelNames[strings.ToLower(strings.TrimSpace(levelStr))]; ok {
		return level
	}
	return types.InfoLevel
}

// ConvertLevel converts a types.LogLevel to a zap level.
func ConvertLevel(level types.LogLevel) zapcore.Level {
	if zl, ok := zapLevels[level]; ok {
		return zl
	}
	return zapcore.InfoLevel
}

func convertZapLevel(level zapcore.Level) types.LogLevel {
	for l, zl := range zapLevels {
		if zl == level {
			return l
		}
	}
	return types.InfoLevel
}
