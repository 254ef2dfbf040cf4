package internallogger

import (
	"errors"
	"testing"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (*ZapLoggerAdapter, *observer.ObservedLogs) {
	logger := NewLogger(LoggerWithLevel("debug"))
	core, obs := observer.New(level)
	logger.mu.Lock()
	logger.logger = zap.New(core)
	logger.mu.Unlock()
	return logger, obs
}

func TestLog_WritesFields(t *testing.T) {
	logger, obs := observed(zapcore.DebugLevel)

	logger.Log(types.InfoLevel, "msg", "a", "b", "c", 3, "orphan")

	entries := obs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].Context
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != "a" || fields[1].Key != "c" {
		t.Fatalf("unexpected field keys: %v, %v", fields[0].Key, fields[1].Key)
	}
}

func TestLog_IgnoresNonStringKeys(t *testing.T) {
	logger, obs := observed(zapcore.DebugLevel)

	logger.Log(types.InfoLevel, "msg", 123, "skip", "k", "v")

	fields := obs.All()[0].Context
	if len(fields) != 1 || fields[0].Key != "k" {
		t.Fatalf("expected only field 'k', got %v", fields)
	}
}

func TestLog_TypedFields(t *testing.T) {
	logger, obs := observed(zapcore.DebugLevel)

	logger.Log(types.WarnLevel, "typed",
		"error", errors.New("boom"),
		"elapsed", 150*time.Millisecond,
		"state", types.CircuitOpen,
	)

	ctx := obs.All()[0].ContextMap()
	if ctx["error"] != "boom" {
		t.Fatalf("expected error field, got %v", ctx["error"])
	}
	if ctx["elapsed"] != 150*time.Millisecond {
		t.Fatalf("expected duration field, got %v", ctx["elapsed"])
	}
	if ctx["state"] != "OPEN" {
		t.Fatalf("expected stringer field, got %v", ctx["state"])
	}
}

func TestLog_RespectsCoreLevel(t *testing.T) {
	logger, obs := observed(zapcore.WarnLevel)

	logger.Log(types.InfoLevel, "info")
	logger.Log(types.WarnLevel, "warn")

	entries := obs.All()
	if len(entries) != 1 || entries[0].Entry.Level != zapcore.WarnLevel {
		t.Fatalf("expected a single warn entry, got %v", entries)
	}
}

func TestNotify_FiltersByLoggerLevel(t *testing.T) {
	debugLogger, debugObs := observed(zapcore.DebugLevel)
	warnLogger, warnObs := observed(zapcore.DebugLevel)
	warnLogger.SetLevel(types.WarnLevel)

	Notify([]types.Logger{debugLogger, nil, warnLogger}, types.InfoLevel, "hello", "event", "Test")

	if debugObs.Len() != 1 {
		t.Fatalf("expected debug logger to receive entry")
	}
	if warnObs.Len() != 0 {
		t.Fatalf("expected warn logger to skip info entry")
	}
}

func TestLog_NilLoggerNoPanic(t *testing.T) {
	logger := NewLogger()
	logger.mu.Lock()
	logger.logger = nil
	logger.mu.Unlock()

	logger.Log(types.InfoLevel, "msg")
	if err := logger.Flush(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestConvertLevel_Defaults(t *testing.T) {
	if got := ConvertLevel(types.LogLevel(99)); got != zapcore.InfoLevel {
		t.Fatalf("expected default zapcore.InfoLevel, got %v", got)
	}
	if got := convertZapLevel(zapcore.Level(99)); got != types.InfoLevel {
		t.Fatalf("expected default types.InfoLevel, got %v", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]types.LogLevel{
		"debug":  types.DebugLevel,
		"INFO":   types.InfoLevel,
		"warn":   types.WarnLevel,
		"error":  types.ErrorLevel,
		"dpanic": types.DPanicLevel,
		"panic":  types.PanicLevel,
		"fatal":  types.FatalLevel,
		"bogus":  types.InfoLevel,
	}

	for input, expect := range cases {
		if got := parseLogLevel(input); got != expect {
			t.Fatalf("parseLogLevel(%q) = %v, expected %v", input, got, expect)
		}
	}
}
