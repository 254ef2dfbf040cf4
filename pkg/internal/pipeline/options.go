package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// WithLogger attaches loggers to the pipeline and every component it builds.
func WithLogger(logger ...types.Logger) types.Option[*Pipeline] {
	return func(p *Pipeline) {
		p.ConnectLogger(logger...)
	}
}

func WithComponentMetadata(name string, id string) types.Option[*Pipeline] {
	return func(p *Pipeline) {
		p.SetComponentMetadata(name, id)
	}
}

// WithMeter replaces the default meter.
func WithMeter(m types.Meter) types.Option[*Pipeline] {
	return func(p *Pipeline) {
		p.meter = m
	}
}

// WithPrometheusRegisterer registers the pipeline counters for the lifetime of the pipeline.
func WithPrometheusRegisterer(r prometheus.Registerer) types.Option[*Pipeline] {
	return func(p *Pipeline) {
		p.registerer = r
	}
}

// WithMonitor samples gauges and logs a progress report every interval.
func WithMonitor(interval time.Duration) types.Option[*Pipeline] {
	return func(p *Pipeline) {
		p.monitorInterval = interval
	}
}

// WithOwnedLoader makes Close also close the record loader when it implements io.Closer.
func WithOwnedLoader() types.Option[*Pipeline] {
	return func(p *Pipeline) {
		p.ownsLoader = true
	}
}
