package meter

import (
	"math"
	"sync/atomic"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// Snapshot copies the counters into a Stats value. Circuit breaker fields are left for the
// owner of the breakers to fill in.
func (m *Meter) Snapshot() types.Stats {
	m.countersLock.RLock()
	defer m.countersLock.RUnlock()

	load := func(metric string) uint64 {
		if c, ok := m.counts[metric]; ok {
			return atomic.LoadUint64(c)
		}
		return 0
	}

	stats := types.Stats{
		TasksSubmitted: load(types.MetricTasksSubmitted),
		TasksRejected:  load(types.MetricTasksRejected),
		TasksCompleted: load(types.MetricTasksCompleted),
		TasksFailed:    load(types.MetricTasksFailed),
		Produced:       load(types.MetricPayloadsProduced),
		Consumed:       load(types.MetricPayloadsConsumed),
		Sinks:          make(map[string]types.SinkStats, len(m.sinkCounts)),
	}
	for _, name := range m.sinkOrder {
		counters := m.sinkCounts[name]
		s := types.SinkStats{
			Name:              name,
			Written:           atomic.LoadUint64(counters[types.MetricSinkWritten]),
			FailedPermanently: atomic.LoadUint64(counters[types.MetricSinkFailed]),
			Batches:           atomic.LoadUint64(counters[types.MetricSinkBatches]),
			Retries:           atomic.LoadUint64(counters[types.MetricSinkRetries]),
			Rejected:          atomic.LoadUint64(counters[types.MetricSinkRejected]),
		}
		stats.Written += s.Written
		stats.FailedPermanently += s.FailedPermanently
		stats.Sinks[name] = s
	}
	return stats
}

func (m *Meter) gaugeLocked(metric string) float64 {
	g, ok := m.gauges[metric]
	if !ok {
		return 0
	}
	return math.Float64frombits(atomic.LoadUint64(g))
}
