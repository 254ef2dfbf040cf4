package sinkwriter

import (
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

func (w *SinkWriter) ConnectLogger(loggers ...types.Logger) {
	w.configLock.Lock()
	defer w.configLock.Unlock()
	for _, l := range loggers {
		if l != nil {
			w.loggers = append(w.loggers, l)
		}
	}
}

func (w *SinkWriter) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	w.configLock.Lock()
	loggers := append([]types.Logger(nil), w.loggers...)
	w.configLock.Unlock()
	internallogger.Notify(loggers, level, msg, keysAndValues...)
}

func (w *SinkWriter) GetComponentMetadata() types.ComponentMetadata {
	w.configLock.Lock()
	defer w.configLock.Unlock()
	return w.componentMetadata
}

func (w *SinkWriter) SetComponentMetadata(name string, id string) {
	w.configLock.Lock()
	defer w.configLock.Unlock()
	w.componentMetadata.Name = name
	if id != "" {
		w.componentMetadata.ID = id
	}
}

func (w *SinkWriter) notifyStart() {
	w.NotifyLoggers(
		types.DebugLevel,
		"Sink writer started",
		logschema.FieldComponent, w.GetComponentMetadata(),
		logschema.FieldEvent, "Start",
		logschema.FieldSink, w.name,
		"batch_limit", w.batchSize,
		"max_wait", w.maxWait,
	)
}

func (w *SinkWriter) notifyStop() {
	stats := w.Stats()
	w.NotifyLoggers(
		types.InfoLevel,
		"Sink writer stopped",
		logschema.FieldComponent, w.GetComponentMetadata(),
		logschema.FieldEvent, "Stop",
		logschema.FieldSink, w.name,
		"written", stats.Written,
		"failed", stats.FailedPermanently,
	)
}

func (w *SinkWriter) notifyBatchWritten(size, attempts int, reason string, elapsed time.Duration) {
	w.NotifyLoggers(
		types.DebugLevel,
		"Batch written",
		logschema.FieldComponent, w.GetComponentMetadata(),
		logschema.FieldEvent, "WriteBatch",
		logschema.FieldResult, logschema.ResultSuccess,
		logschema.FieldSink, w.name,
		logschema.FieldBatchSize, size,
		logschema.FieldAttempt, attempts,
		"reason", reason,
		"elapsed", elapsed,
	)
}

func (w *SinkWriter) notifyRetry(size, attempt int, next time.Duration, err error) {
	w.NotifyLoggers(
		types.WarnLevel,
		"Batch write failed; retrying",
		logschema.FieldComponent, w.GetComponentMetadata(),
		logschema.FieldEvent, "WriteBatch",
		logschema.FieldResult, logschema.ResultFailure,
		logschema.FieldSink, w.name,
		logschema.FieldBatchSize, size,
		logschema.FieldAttempt, attempt,
		"backoff", next,
		logschema.FieldError, err,
	)
}

func (w *SinkWriter) notifyBatchFailed(size, attempts int, err error) {
	w.NotifyLoggers(
		types.ErrorLevel,
		"Batch permanently failed",
		logschema.FieldComponent, w.GetComponentMetadata(),
		logschema.FieldEvent, "WriteBatch",
		logschema.FieldResult, logschema.ResultFailure,
		logschema.FieldSink, w.name,
		logschema.FieldBatchSize, size,
		logschema.FieldAttempt, attempts,
		"circuit", w.breaker.State(),
		logschema.FieldError, err,
	)
}
