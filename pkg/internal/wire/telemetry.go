package wire

import (
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

// NotifyLoggers emits a log entry to all configured loggers.
func (w *Wire) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	w.configLock.Lock()
	loggers := append([]types.Logger(nil), w.loggers...)
	w.configLock.Unlock()
	internallogger.Notify(loggers, level, msg, keysAndValues...)
}

func (w *Wire) notifyTaskCompleted(recordID string, produced int, elapsed time.Duration) {
	w.NotifyLoggers(
		types.DebugLevel,
		"Converted record",
		logschema.FieldComponent, w.GetComponentMetadata(),
		logschema.FieldEvent, "Convert",
		logschema.FieldResult, logschema.ResultSuccess,
		logschema.FieldRecordID, recordID,
		"payloads", produced,
		"elapsed", elapsed,
	)
}

func (w *Wire) notifyTaskFailed(recordID string, produced int, elapsed time.Duration, err error) {
	w.NotifyLoggers(
		types.ErrorLevel,
		"Record conversion failed",
		logschema.FieldComponent, w.GetComponentMetadata(),
		logschema.FieldEvent, "Convert",
		logschema.FieldResult, logschema.ResultFailure,
		logschema.FieldRecordID, recordID,
		"payloads", produced,
		"elapsed", elapsed,
		logschema.FieldError, err,
	)
}

func (w *Wire) notifyAdmissionCancelled(recordID string, err error) {
	w.NotifyLoggers(
		types.WarnLevel,
		"Admission cancelled before a permit was granted",
		logschema.FieldComponent, w.GetComponentMetadata(),
		logschema.FieldEvent, "Submit",
		logschema.FieldResult, logschema.ResultCancelled,
		logschema.FieldRecordID, recordID,
		logschema.FieldError, err,
	)
}

func (w *Wire) notifyStop() {
	w.NotifyLoggers(
		types.InfoLevel,
		"Stopping conversion pool",
		logschema.FieldComponent, w.GetComponentMetadata(),
		logschema.FieldEvent, "Stop",
		"waiting", w.pool.WaitingTasks(),
		"running", w.pool.RunningWorkers(),
	)
}

func (w *Wire) notifyForceCancel(timeout time.Duration) {
	w.NotifyLoggers(
		types.WarnLevel,
		"Conversion pool did not drain in time; cancelling running tasks",
		logschema.FieldComponent, w.GetComponentMetadata(),
		logschema.FieldEvent, "Stop",
		logschema.FieldResult, logschema.ResultTimeout,
		"timeout", timeout,
	)
}
