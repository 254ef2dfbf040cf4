package types

// LogLevel orders log severities from DebugLevel up to FatalLevel.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	DPanicLevel // error in production, panic in development
	PanicLevel
	FatalLevel
)

// SinkType names a log destination that can be added to a Logger at runtime.
type SinkType string

const (
	FileSink   SinkType = "file"
	StdoutSink SinkType = "stdout"
)

// SinkConfig describes an extra log destination. File sinks read Config["path"].
type SinkConfig struct {
	Type   string
	Config map[string]interface{}
}

// Logger is the structured logger every pipeline component reports through.
// keysAndValues alternate between a logschema field name and its value.
type Logger interface {
	GetLevel() LogLevel
	SetLevel(LogLevel)
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	DPanic(msg string, keysAndValues ...interface{})
	Panic(msg string, keysAndValues ...interface{})
	Fatal(msg string, keysAndValues ...interface{})
	Flush() error

	AddSink(identifier string, config SinkConfig) error
	RemoveSink(identifier string) error
	ListSinks() ([]string, error)
}
