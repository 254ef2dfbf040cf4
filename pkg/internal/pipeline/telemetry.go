package pipeline

import (
	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

func (p *Pipeline) ConnectLogger(loggers ...types.Logger) {
	p.configLock.Lock()
	defer p.configLock.Unlock()
	for _, l := range loggers {
		if l != nil {
			p.loggers = append(p.loggers, l)
		}
	}
}

func (p *Pipeline) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	internallogger.Notify(p.snapshotLoggers(), level, msg, keysAndValues...)
}

func (p *Pipeline) snapshotLoggers() []types.Logger {
	p.configLock.Lock()
	defer p.configLock.Unlock()
	return append([]types.Logger(nil), p.loggers...)
}

func (p *Pipeline) GetComponentMetadata() types.ComponentMetadata {
	p.configLock.Lock()
	defer p.configLock.Unlock()
	return p.componentMetadata
}

func (p *Pipeline) SetComponentMetadata(name string, id string) {
	p.configLock.Lock()
	defer p.configLock.Unlock()
	p.componentMetadata.Name = name
	if id != "" {
		p.componentMetadata.ID = id
	}
}

func (p *Pipeline) notifyStart() {
	p.NotifyLoggers(
		types.InfoLevel,
		"Pipeline started",
		logschema.FieldComponent, p.GetComponentMetadata(),
		logschema.FieldEvent, "Start",
		"sinks", p.Sinks(),
		"conversionThreads", p.cfg.ConversionThreads,
		"maxConcurrentTasks", p.cfg.MaxConcurrentTasks,
	)
}

func (p *Pipeline) notifySinkUnreachable(sink string, err error) {
	p.NotifyLoggers(
		types.ErrorLevel,
		"Sink failed its startup check",
		logschema.FieldComponent, p.GetComponentMetadata(),
		logschema.FieldEvent, "Ping",
		logschema.FieldResult, logschema.ResultFailure,
		logschema.FieldSink, sink,
		logschema.FieldError, err,
	)
}

func (p *Pipeline) notifyBreakerReset(sink string) {
	p.NotifyLoggers(
		types.WarnLevel,
		"Circuit breaker reset by operator",
		logschema.FieldComponent, p.GetComponentMetadata(),
		logschema.FieldEvent, "ResetBreaker",
		logschema.FieldSink, sink,
	)
}

func (p *Pipeline) notifySinkRecovered(sink string) {
	p.NotifyLoggers(
		types.InfoLevel,
		"Sink circuit recovered",
		logschema.FieldComponent, p.GetComponentMetadata(),
		logschema.FieldEvent, "Recover",
		logschema.FieldResult, logschema.ResultSuccess,
		logschema.FieldSink, sink,
	)
}

func (p *Pipeline) notifyFlushComplete(report types.FlushReport) {
	p.NotifyLoggers(
		types.InfoLevel,
		"Flush complete",
		logschema.FieldComponent, p.GetComponentMetadata(),
		logschema.FieldEvent, "Flush",
		logschema.FieldResult, logschema.ResultSuccess,
		"elapsed", report.Elapsed,
		"written", report.Stats.Written,
		"failedPermanently", report.Stats.FailedPermanently,
	)
}

func (p *Pipeline) notifyFlushIncomplete(report types.FlushReport, pendingWriters int) {
	p.NotifyLoggers(
		types.WarnLevel,
		"Flush did not complete before its timeout",
		logschema.FieldComponent, p.GetComponentMetadata(),
		logschema.FieldEvent, "Flush",
		logschema.FieldResult, logschema.ResultTimeout,
		"quiesced", report.Quiesced,
		"delivered", report.Delivered,
		"pendingWriters", pendingWriters,
		"outstandingTasks", p.barrier.Outstanding(),
		"elapsed", report.Elapsed,
	)
}

func (p *Pipeline) notifyClosing() {
	p.NotifyLoggers(
		types.InfoLevel,
		"Pipeline closing",
		logschema.FieldComponent, p.GetComponentMetadata(),
		logschema.FieldEvent, "Close",
	)
}

func (p *Pipeline) notifyClosed(report types.FlushReport, leftover uint64, err error) {
	stats := p.Stats()
	level := types.InfoLevel
	result := logschema.ResultSuccess
	if err != nil || !report.Complete() || leftover > 0 {
		level = types.WarnLevel
		result = logschema.ResultFailure
	}
	p.NotifyLoggers(
		level,
		"Pipeline closed",
		logschema.FieldComponent, p.GetComponentMetadata(),
		logschema.FieldEvent, "Close",
		logschema.FieldResult, result,
		"produced", stats.Produced,
		"written", stats.Written,
		"failedPermanently", stats.FailedPermanently,
		"leftover", leftover,
		logschema.FieldError, err,
	)
}
