// Package meter keeps the pipeline counters. Counters are lock-free once created; the meter
// exposes them as a Stats snapshot, as a Prometheus collector, and through a periodic report
// that includes host CPU and memory usage.
package meter

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
)

type Meter struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	configLock        sync.Mutex

	countersLock sync.RWMutex
	counts       map[string]*uint64
	sinkCounts   map[string]map[string]*uint64
	sinkOrder    []string
	gauges       map[string]*uint64
	sinkGauges   map[string]map[string]*uint64

	namespace string

	descOnce sync.Once
	descs    map[string]*prometheus.Desc
}

var globalMetrics = []string{
	types.MetricTasksSubmitted,
	types.MetricTasksRejected,
	types.MetricTasksCompleted,
	types.MetricTasksFailed,
	types.MetricPayloadsProduced,
	types.MetricPayloadsConsumed,
	types.MetricFlushesRequested,
	types.MetricFlushesTimedOut,
}

var sinkMetrics = []string{
	types.MetricSinkWritten,
	types.MetricSinkFailed,
	types.MetricSinkBatches,
	types.MetricSinkRetries,
	types.MetricSinkRejected,
}

func NewMeter(options ...types.Option[types.Meter]) types.Meter {
	m := &Meter{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "METER",
		},
		counts:     make(map[string]*uint64, len(globalMetrics)),
		sinkCounts: make(map[string]map[string]*uint64),
		gauges:     make(map[string]*uint64),
		sinkGauges: make(map[string]map[string]*uint64),
		namespace:  "switchboard",
	}
	for _, name := range globalMetrics {
		m.counts[name] = new(uint64)
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}
