package meter

import (
	"math"
	"sort"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

var globalGauges = []string{
	types.MetricCurrentCpuPercent,
	types.MetricCurrentRamPercent,
	types.MetricCurrentGoRoutines,
	types.MetricPeakGoRoutines,
	types.MetricAdmissionInFlight,
	types.MetricBarrierOutstanding,
	types.MetricIngressBufferLength,
	types.MetricWritersRunning,
}

var sinkGaugeMetrics = []string{
	types.MetricBreakerState,
	types.MetricBreakerConsecutive,
}

// descriptors builds one descriptor per known metric name. Sink metrics use a variable "sink"
// label, so the set does not depend on which sinks exist and Unregister finds the collector again.
func (m *Meter) descriptors() map[string]*prometheus.Desc {
	m.descOnce.Do(func() {
		m.descs = make(map[string]*prometheus.Desc)
		for _, name := range globalMetrics {
			m.descs[name] = m.newDesc(name, "Pipeline counter "+name+".", nil)
		}
		for _, name := range globalGauges {
			m.descs[name] = m.newDesc(name, "Pipeline gauge "+name+".", nil)
		}
		for _, name := range sinkMetrics {
			m.descs[name] = m.newDesc(name, "Per-sink counter "+name+".", []string{"sink"})
		}
		for _, name := range sinkGaugeMetrics {
			m.descs[name] = m.newDesc(name, "Per-sink gauge "+name+".", []string{"sink"})
		}
	})
	return m.descs
}

func (m *Meter) newDesc(name, help string, labels []string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(m.namespace, "", name), help, labels, nil)
}

func (m *Meter) descFor(name, help string, labels []string) *prometheus.Desc {
	if d, ok := m.descriptors()[name]; ok {
		return d
	}
	return m.newDesc(name, help, labels)
}

// Describe sends the descriptor of every metric the meter can export.
func (m *Meter) Describe(ch chan<- *prometheus.Desc) {
	descs := m.descriptors()
	for _, group := range [][]string{globalMetrics, globalGauges, sinkMetrics, sinkGaugeMetrics} {
		for _, name := range group {
			ch <- descs[name]
		}
	}
}

// Collect exports every counter and gauge. Sink counters carry a "sink" label.
func (m *Meter) Collect(ch chan<- prometheus.Metric) {
	m.countersLock.RLock()
	defer m.countersLock.RUnlock()

	names := make([]string, 0, len(m.counts))
	for name := range m.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		desc := m.descFor(name, "Pipeline counter "+name+".", nil)
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(atomic.LoadUint64(m.counts[name])))
	}

	for _, metric := range sinkMetrics {
		desc := m.descFor(metric, "Per-sink counter "+metric+".", []string{"sink"})
		for _, sink := range m.sinkOrder {
			c, ok := m.sinkCounts[sink][metric]
			if !ok {
				continue
			}
			ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(atomic.LoadUint64(c)), sink)
		}
	}

	for _, metric := range sinkGaugeMetrics {
		desc := m.descFor(metric, "Per-sink gauge "+metric+".", []string{"sink"})
		for _, sink := range m.sinkOrder {
			g, ok := m.sinkGauges[sink][metric]
			if !ok {
				continue
			}
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, math.Float64frombits(atomic.LoadUint64(g)), sink)
		}
	}

	gauges := make([]string, 0, len(m.gauges))
	for name := range m.gauges {
		gauges = append(gauges, name)
	}
	sort.Strings(gauges)
	for _, name := range gauges {
		desc := m.descFor(name, "Pipeline gauge "+name+".", nil)
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, m.gaugeLocked(name))
	}
}
