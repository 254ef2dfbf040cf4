package internallogger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type sinkEntry struct {
	core    zapcore.Core
	closeFn func() error
}

// AddSink tees log output to an additional destination. Supported types are "file"
// (Config["path"]) and "stdout".
func (z *ZapLoggerAdapter) AddSink(identifier string, config types.SinkConfig) error {
	var (
		ws      zapcore.WriteSyncer
		closeFn func() error
	)

	switch types.SinkType(config.Type) {
	case types.FileSink:
		path, _ := config.Config["path"].(string)
		if path == "" {
			return fmt.Errorf("internallogger: file sink requires a path")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("internallogger: create log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("internallogger: open %s: %w", path, err)
		}
		ws = zapcore.AddSync(file)
		closeFn = file.Close
	case types.StdoutSink:
		ws = zapcore.Lock(os.Stdout)
	default:
		return fmt.Errorf("internallogger: unsupported sink type %q", config.Type)
	}

	z.mu.Lock()
	defer z.mu.Unlock()
	if old, ok := z.sinks[identifier]; ok && old.closeFn != nil {
		_ = old.closeFn()
	}
	z.sinks[identifier] = sinkEntry{
		core:    zapcore.NewCore(zapcore.NewJSONEncoder(z.encConfig), ws, z.atomicLevel),
		closeFn: closeFn,
	}
	z.rebuildLoggerLocked()
	return nil
}

// RemoveSink detaches and closes a sink added with AddSink.
func (z *ZapLoggerAdapter) RemoveSink(identifier string) error {
	z.mu.Lock()
	defer z.mu.Unlock()

	entry, ok := z.sinks[identifier]
	if !ok {
		return fmt.Errorf("internallogger: sink not found: %s", identifier)
	}
	delete(z.sinks, identifier)
	z.rebuildLoggerLocked()
	if entry.closeFn != nil {
		return entry.closeFn()
	}
	return nil
}

// ListSinks returns the identifiers of the added sinks.
func (z *ZapLoggerAdapter) ListSinks() ([]string, error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	identifiers := make([]string, 0, len(z.sinks))
	for id := range z.sinks {
		identifiers = append(identifiers, id)
	}
	return identifiers, nil
}

func (z *ZapLoggerAdapter) rebuildLoggerLocked() {
	cores := make([]zapcore.Core, 0, 1+len(z.sinks))
	cores = append(cores, z.baseCore)
	for _, entry := range z.sinks {
		cores = append(cores, entry.core)
	}
	opts := []zap.Option{zap.AddCallerSkip(z.callerDepth)}
	if z.callerOn {
		opts = append(opts, zap.AddCaller())
	}
	z.logger = zap.New(zapcore.NewTee(cores...), opts...).With(z.baseFields...)
}

// AttachCore tees entries to an existing zap core, e.g. an observer in tests or a core built by
// the embedding application.
func (z *ZapLoggerAdapter) AttachCore(identifier string, core zapcore.Core) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if old, ok := z.sinks[identifier]; ok && old.closeFn != nil {
		_ = old.closeFn()
	}
	z.sinks[identifier] = sinkEntry{core: core}
	z.rebuildLoggerLocked()
}
