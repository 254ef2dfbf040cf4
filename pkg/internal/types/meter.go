package types

const (
	MetricTasksSubmitted      = "tasks_submitted_total"
	MetricTasksRejected       = "tasks_rejected_total"
	MetricTasksCompleted      = "tasks_completed_total"
	MetricTasksFailed         = "tasks_failed_total"
	MetricPayloadsProduced    = "payloads_produced_total"
	MetricPayloadsConsumed    = "payloads_consumed_total"
	MetricFlushesRequested    = "flushes_requested_total"
	MetricFlushesTimedOut     = "flushes_timed_out_total"
	MetricSinkWritten         = "sink_payloads_written_total"
	MetricSinkFailed          = "sink_payloads_failed_total"
	MetricSinkBatches         = "sink_batches_total"
	MetricSinkRetries         = "sink_retries_total"
	MetricSinkRejected        = "sink_payloads_rejected_total"
	MetricCurrentCpuPercent   = "current_cpu_percentage"
	MetricCurrentRamPercent   = "current_ram_percentage"
	MetricCurrentGoRoutines   = "current_go_routines_active"
	MetricPeakGoRoutines      = "peak_go_routines_active"
	MetricBreakerState        = "sink_circuit_state"
	MetricBreakerConsecutive  = "sink_circuit_consecutive_failures"
	MetricAdmissionInFlight   = "admission_in_flight"
	MetricBarrierOutstanding  = "barrier_outstanding"
	MetricIngressBufferLength = "ingress_buffer_length"
	MetricWritersRunning      = "sink_writers_running"
)

// Meter counts pipeline events. Global counters are keyed by metric name; sink counters are
// keyed by sink name and metric name.
type Meter interface {
	IncrementCount(metric string)
	AddCount(metric string, n uint64)
	GetMetricCount(metric string) uint64

	RegisterSink(sink string)
	AddSinkCount(sink string, metric string, n uint64)
	GetSinkCount(sink string, metric string) uint64
	SinkNames() []string

	SetGauge(metric string, value float64)
	GetGauge(metric string) float64
	SetSinkGauge(sink string, metric string, value float64)
	GetSinkGauge(sink string, metric string) float64

	Snapshot() Stats

	ConnectLogger(...Logger)
	NotifyLoggers(level LogLevel, msg string, keysAndValues ...interface{})
	GetComponentMetadata() ComponentMetadata
	SetComponentMetadata(name string, id string)
}

// SinkStats are the counters kept for one sink writer.
type SinkStats struct {
	Name                string       `json:"name"`
	Written             uint64       `json:"written"`
	FailedPermanently   uint64       `json:"failed_permanently"`
	Batches             uint64       `json:"batches"`
	Retries             uint64       `json:"retries"`
	Rejected            uint64       `json:"rejected"`
	CircuitState        CircuitState `json:"circuit_state"`
	ConsecutiveFailures int          `json:"consecutive_failures"`
}

// Stats is a point-in-time copy of the pipeline counters. Written and FailedPermanently are
// summed over all sinks.
type Stats struct {
	TasksSubmitted    uint64               `json:"tasks_submitted"`
	TasksRejected     uint64               `json:"tasks_rejected"`
	TasksCompleted    uint64               `json:"tasks_completed"`
	TasksFailed       uint64               `json:"tasks_failed"`
	Produced          uint64               `json:"produced"`
	Consumed          uint64               `json:"consumed"`
	Written           uint64               `json:"written"`
	FailedPermanently uint64               `json:"failed_permanently"`
	Sinks             map[string]SinkStats `json:"sinks"`
}

// Settled reports whether every sink has accounted for every produced payload.
func (s Stats) Settled() bool {
	if len(s.Sinks) == 0 {
		return s.Consumed == s.Produced
	}
	for _, sink := range s.Sinks {
		if sink.Written+sink.FailedPermanently != s.Produced {
			return false
		}
	}
	return true
}
