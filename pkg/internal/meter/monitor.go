package meter

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// Monitor samples host usage and logs a progress report every interval until ctx is done.
// The final report is logged on exit.
func (m *Meter) Monitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.report("Pipeline final report")
			return
		case <-ticker.C:
			m.SampleHost()
			m.report("Pipeline progress")
		}
	}
}

// SampleHost records CPU, memory and goroutine gauges.
func (m *Meter) SampleHost() {
	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		m.SetGauge(types.MetricCurrentCpuPercent, percentages[0])
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		m.SetGauge(types.MetricCurrentRamPercent, vm.UsedPercent)
	}
	goroutines := float64(runtime.NumGoroutine())
	m.SetGauge(types.MetricCurrentGoRoutines, goroutines)
	if goroutines > m.GetGauge(types.MetricPeakGoRoutines) {
		m.SetGauge(types.MetricPeakGoRoutines, goroutines)
	}
}

func (m *Meter) report(msg string) {
	stats := m.Snapshot()
	m.NotifyLoggers(types.InfoLevel, msg,
		"component", m.GetComponentMetadata(),
		"event", "Report",
		"produced", stats.Produced,
		"consumed", stats.Consumed,
		"written", stats.Written,
		"failedPermanently", stats.FailedPermanently,
		"tasksCompleted", stats.TasksCompleted,
		"tasksFailed", stats.TasksFailed,
		"cpuPercent", m.GetGauge(types.MetricCurrentCpuPercent),
		"ramPercent", m.GetGauge(types.MetricCurrentRamPercent),
		"goroutines", m.GetGauge(types.MetricCurrentGoRoutines),
	)
}
