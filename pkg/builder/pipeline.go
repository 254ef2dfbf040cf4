package builder

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joeydtaylor/switchboard/pkg/internal/meter"
	"github.com/joeydtaylor/switchboard/pkg/internal/pipeline"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

type (
	Pipeline       = pipeline.Pipeline
	PipelineConfig = types.PipelineConfig
	Stats          = types.Stats
	SinkStats      = types.SinkStats
	FlushReport    = types.FlushReport
	CircuitState   = types.CircuitState
	Indexer        = types.Indexer

	RecordSnapshot = types.RecordSnapshot
	Relation       = types.Relation
	Payload        = types.Payload
	Triple         = types.Triple

	RecordLoader   = types.RecordLoader
	DocumentMapper = types.DocumentMapper
	SinkClient     = types.SinkClient
	NamedSink      = types.NamedSink
	Pinger         = types.Pinger
	Validator      = types.Validator

	Meter = types.Meter
)

var (
	ErrPipelineClosed = types.ErrPipelineClosed
	ErrUnknownSink    = types.ErrUnknownSink
	ErrCircuitOpen    = types.ErrCircuitOpen
	ErrSinkClosed     = types.ErrSinkClosed
)

const (
	CircuitClosed = types.CircuitClosed
	CircuitOpen   = types.CircuitOpen
)

// DefaultPipelineConfig returns the documented defaults.
func DefaultPipelineConfig() PipelineConfig {
	return types.DefaultPipelineConfig()
}

// NewPipeline validates the setup, pings the sinks and starts the pipeline.
func NewPipeline(ctx context.Context, cfg PipelineConfig, loader RecordLoader, mapper DocumentMapper, sinks []NamedSink, options ...types.Option[*Pipeline]) (*Pipeline, error) {
	return pipeline.New(ctx, cfg, loader, mapper, sinks, options...)
}

// Sink pairs a client with the name it is reported under.
func Sink(name string, client SinkClient) NamedSink {
	return NamedSink{Name: name, Client: client}
}

func PipelineWithLogger(l ...types.Logger) types.Option[*Pipeline] {
	return pipeline.WithLogger(l...)
}

func PipelineWithComponentMetadata(name string, id string) types.Option[*Pipeline] {
	return pipeline.WithComponentMetadata(name, id)
}

func PipelineWithMeter(m Meter) types.Option[*Pipeline] {
	return pipeline.WithMeter(m)
}

// PipelineWithPrometheusRegisterer registers the pipeline counters until Close.
func PipelineWithPrometheusRegisterer(r prometheus.Registerer) types.Option[*Pipeline] {
	return pipeline.WithPrometheusRegisterer(r)
}

// PipelineWithMonitor logs a progress report, including host CPU and memory, every interval.
func PipelineWithMonitor(interval time.Duration) types.Option[*Pipeline] {
	return pipeline.WithMonitor(interval)
}

// PipelineWithOwnedLoader makes Close also close the record loader.
func PipelineWithOwnedLoader() types.Option[*Pipeline] {
	return pipeline.WithOwnedLoader()
}

// NewMeter creates the counter set a pipeline reports through.
func NewMeter(options ...types.Option[types.Meter]) Meter {
	return meter.NewMeter(options...)
}

func MeterWithLogger(l ...types.Logger) types.Option[types.Meter] {
	return meter.WithLogger(l...)
}

// MeterWithNamespace prefixes every exported Prometheus metric.
func MeterWithNamespace(ns string) types.Option[types.Meter] {
	return meter.WithNamespace(ns)
}
