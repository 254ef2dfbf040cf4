package meter

import (
	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

func (m *Meter) ConnectLogger(loggers ...types.Logger) {
	m.configLock.Lock()
	defer m.configLock.Unlock()
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
}

// NotifyLoggers emits a log entry to all configured loggers.
func (m *Meter) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	m.configLock.Lock()
	loggers := append([]types.Logger(nil), m.loggers...)
	m.configLock.Unlock()
	internallogger.Notify(loggers, level, msg, keysAndValues...)
}

func (m *Meter) GetComponentMetadata() types.ComponentMetadata {
	m.configLock.Lock()
	defer m.configLock.Unlock()
	return m.componentMetadata
}

func (m *Meter) SetComponentMetadata(name string, id string) {
	m.configLock.Lock()
	defer m.configLock.Unlock()
	m.componentMetadata.Name = name
	if id != "" {
		m.componentMetadata.ID = id
	}
}

func (m *Meter) setNamespace(ns string) {
	m.configLock.Lock()
	defer m.configLock.Unlock()
	m.namespace = ns
}
