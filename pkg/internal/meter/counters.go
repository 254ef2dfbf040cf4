package meter

import (
	"math"
	"sync/atomic"
)

// IncrementCount adds one to a global counter.
func (m *Meter) IncrementCount(metric string) {
	m.AddCount(metric, 1)
}

// AddCount adds n to a global counter, creating it on first use.
func (m *Meter) AddCount(metric string, n uint64) {
	atomic.AddUint64(m.counter(metric), n)
}

func (m *Meter) GetMetricCount(metric string) uint64 {
	m.countersLock.RLock()
	c, ok := m.counts[metric]
	m.countersLock.RUnlock()
	if !ok {
		return 0
	}
	return atomic.LoadUint64(c)
}

// RegisterSink creates the counters for a sink so it appears in snapshots before its first write.
func (m *Meter) RegisterSink(sink string) {
	m.countersLock.Lock()
	defer m.countersLock.Unlock()
	m.registerSinkLocked(sink)
}

func (m *Meter) registerSinkLocked(sink string) map[string]*uint64 {
	if counters, ok := m.sinkCounts[sink]; ok {
		return counters
	}
	counters := make(map[string]*uint64, len(sinkMetrics))
	for _, name := range sinkMetrics {
		counters[name] = new(uint64)
	}
	m.sinkCounts[sink] = counters
	m.sinkOrder = append(m.sinkOrder, sink)
	return counters
}

func (m *Meter) AddSinkCount(sink string, metric string, n uint64) {
	atomic.AddUint64(m.sinkCounter(sink, metric), n)
}

func (m *Meter) GetSinkCount(sink string, metric string) uint64 {
	m.countersLock.RLock()
	defer m.countersLock.RUnlock()
	counters, ok := m.sinkCounts[sink]
	if !ok {
		return 0
	}
	c, ok := counters[metric]
	if !ok {
		return 0
	}
	return atomic.LoadUint64(c)
}

// SinkNames returns the registered sinks in registration order.
func (m *Meter) SinkNames() []string {
	m.countersLock.RLock()
	defer m.countersLock.RUnlock()
	return append([]string(nil), m.sinkOrder...)
}

func (m *Meter) SetGauge(metric string, value float64) {
	m.countersLock.RLock()
	g, ok := m.gauges[metric]
	m.countersLock.RUnlock()
	if !ok {
		m.countersLock.Lock()
		if g, ok = m.gauges[metric]; !ok {
			g = new(uint64)
			m.gauges[metric] = g
		}
		m.countersLock.Unlock()
	}
	atomic.StoreUint64(g, math.Float64bits(value))
}

func (m *Meter) GetGauge(metric string) float64 {
	m.countersLock.RLock()
	g, ok := m.gauges[metric]
	m.countersLock.RUnlock()
	if !ok {
		return 0
	}
	return math.Float64frombits(atomic.LoadUint64(g))
}

func (m *Meter) counter(metric string) *uint64 {
	m.countersLock.RLock()
	c, ok := m.counts[metric]
	m.countersLock.RUnlock()
	if ok {
		return c
	}
	m.countersLock.Lock()
	defer m.countersLock.Unlock()
	if c, ok = m.counts[metric]; !ok {
		c = new(uint64)
		m.counts[metric] = c
	}
	return c
}

func (m *Meter) sinkCounter(sink string, metric string) *uint64 {
	m.countersLock.RLock()
	if counters, ok := m.sinkCounts[sink]; ok {
		if c, ok := counters[metric]; ok {
			m.countersLock.RUnlock()
			return c
		}
	}
	m.countersLock.RUnlock()

	m.countersLock.Lock()
	defer m.countersLock.Unlock()
	counters := m.registerSinkLocked(sink)
	c, ok := counters[metric]
	if !ok {
		c = new(uint64)
		counters[metric] = c
	}
	return c
}

// SetSinkGauge records a per-sink gauge. The sink is registered if it is new.
func (m *Meter) SetSinkGauge(sink string, metric string, value float64) {
	m.countersLock.Lock()
	m.registerSinkLocked(sink)
	gauges, ok := m.sinkGauges[sink]
	if !ok {
		gauges = make(map[string]*uint64)
		m.sinkGauges[sink] = gauges
	}
	g, ok := gauges[metric]
	if !ok {
		g = new(uint64)
		gauges[metric] = g
	}
	m.countersLock.Unlock()
	atomic.StoreUint64(g, math.Float64bits(value))
}

func (m *Meter) GetSinkGauge(sink string, metric string) float64 {
	m.countersLock.RLock()
	defer m.countersLock.RUnlock()
	g, ok := m.sinkGauges[sink][metric]
	if !ok {
		return 0
	}
	return math.Float64frombits(atomic.LoadUint64(g))
}
