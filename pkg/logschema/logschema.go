package logschema

// Log schema constants for switchboard structured logs.
const (
	SchemaID    = "switchboard.log.v1"
	FieldSchema = "log_schema"

	FieldTimestamp = "ts"
	FieldLevel     = "level"
	FieldMessage   = "msg"
	FieldLogger    = "logger"
	FieldCaller    = "caller"
	FieldStack     = "stack"

	FieldComponent = "component"
	FieldEvent     = "event"
	FieldResult    = "result"
	FieldError     = "error"
	FieldRecordID  = "record_id"
	FieldSink      = "sink"
	FieldBatchSize = "batch_size"
	FieldAttempt   = "attempt"
)

// Values used in the result field.
const (
	ResultSuccess   = "SUCCESS"
	ResultFailure   = "FAILURE"
	ResultCancelled = "CANCELLED"
	ResultTimeout   = "TIMEOUT"
)

// LogRecord is a generic map representation of a log entry.
type LogRecord map[string]interface{}
