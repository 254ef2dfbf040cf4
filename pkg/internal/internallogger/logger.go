// Package internallogger adapts zap to the types.Logger interface used by every pipeline
// component.
package internallogger

import (
	"os"
	"sync"

	"github.com/joeydtaylor/switchboard/pkg/logschema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerOption mutates the zap configuration, the initial level and the caller skip.
type LoggerOption func(*zap.Config, *zapcore.Level, *int)

type ZapLoggerAdapter struct {
	mu          sync.Mutex
	logger      *zap.Logger
	atomicLevel zap.AtomicLevel
	encConfig   zapcore.EncoderConfig
	baseCore    zapcore.Core
	baseFields  []zap.Field
	sinks       map[string]sinkEntry
	callerDepth int
	callerOn    bool
}

// NewLogger builds a JSON logger writing to stdout with the standard field names.
func NewLogger(options ...LoggerOption) *ZapLoggerAdapter {
	config := zap.NewProductionConfig()
	level := zapcore.InfoLevel
	callerDepth := 3

	for _, option := range options {
		option(&config, &level, &callerDepth)
	}

	fields := map[string]interface{}{logschema.FieldSchema: logschema.SchemaID}
	for k, v := range config.InitialFields {
		fields[k] = v
	}

	encConfig := standardEncoderConfig()
	if config.Development {
		encConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	z := &ZapLoggerAdapter{
		atomicLevel: config.Level,
		encConfig:   encConfig,
		baseFields:  fieldsFromMap(fields),
		sinks:       make(map[string]sinkEntry),
		callerDepth: callerDepth,
		callerOn:    !config.DisableCaller,
	}
	z.baseCore = zapcore.NewCore(zapcore.NewJSONEncoder(encConfig), zapcore.Lock(os.Stdout), z.atomicLevel)

	z.mu.Lock()
	z.rebuildLoggerLocked()
	z.mu.Unlock()
	return z
}

func fieldsFromMap(fields map[string]interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for key, value := range fields {
		if key == "" {
			continue
		}
		out = append(out, zap.Any(key, value))
	}
	return out
}
