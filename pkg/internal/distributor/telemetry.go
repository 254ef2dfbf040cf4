package distributor

import (
	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

func (d *Distributor) ConnectLogger(loggers ...types.Logger) {
	d.configLock.Lock()
	defer d.configLock.Unlock()
	for _, l := range loggers {
		if l != nil {
			d.loggers = append(d.loggers, l)
		}
	}
}

func (d *Distributor) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	d.configLock.Lock()
	loggers := append([]types.Logger(nil), d.loggers...)
	d.configLock.Unlock()
	internallogger.Notify(loggers, level, msg, keysAndValues...)
}

func (d *Distributor) GetComponentMetadata() types.ComponentMetadata {
	d.configLock.Lock()
	defer d.configLock.Unlock()
	return d.componentMetadata
}

func (d *Distributor) SetComponentMetadata(name string, id string) {
	d.configLock.Lock()
	defer d.configLock.Unlock()
	d.componentMetadata.Name = name
	if id != "" {
		d.componentMetadata.ID = id
	}
}

func (d *Distributor) notifyStart() {
	d.NotifyLoggers(
		types.DebugLevel,
		"Distributor started",
		logschema.FieldComponent, d.GetComponentMetadata(),
		logschema.FieldEvent, "Start",
		"outputs", d.Outputs(),
	)
}

func (d *Distributor) notifyMarkerForwarded(m *types.FlushMarker) {
	d.NotifyLoggers(
		types.DebugLevel,
		"Flush marker forwarded to every sink writer",
		logschema.FieldComponent, d.GetComponentMetadata(),
		logschema.FieldEvent, "ForwardMarker",
		"remaining", m.Remaining(),
	)
}

func (d *Distributor) notifyStop() {
	d.NotifyLoggers(
		types.InfoLevel,
		"Distributor forwarded shutdown sentinel",
		logschema.FieldComponent, d.GetComponentMetadata(),
		logschema.FieldEvent, "Stop",
		logschema.FieldResult, logschema.ResultSuccess,
	)
}

func (d *Distributor) notifyAbort(err error) {
	d.NotifyLoggers(
		types.WarnLevel,
		"Distributor stopped before the shutdown sentinel",
		logschema.FieldComponent, d.GetComponentMetadata(),
		logschema.FieldEvent, "Stop",
		logschema.FieldResult, logschema.ResultCancelled,
		logschema.FieldError, err,
	)
}
