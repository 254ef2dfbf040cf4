package pipeline

import (
	"context"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/sinkwriter"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

func (p *Pipeline) sampleLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sampleGauges()
		}
	}
}

// sampleGauges copies point-in-time state into the meter gauges.
func (p *Pipeline) sampleGauges() {
	p.meter.SetGauge(types.MetricAdmissionInFlight, float64(p.gate.InFlight()))
	p.meter.SetGauge(types.MetricBarrierOutstanding, float64(p.barrier.Outstanding()))
	p.meter.SetGauge(types.MetricIngressBufferLength, float64(p.ingress.Len()))
	p.meter.SetGauge(types.MetricWritersRunning, float64(p.RunningWriters()))
	for _, w := range p.writers {
		state := 0.0
		if w.Breaker().State() == types.CircuitOpen {
			state = 1
		}
		p.meter.SetSinkGauge(w.Name(), types.MetricBreakerState, state)
		p.meter.SetSinkGauge(w.Name(), types.MetricBreakerConsecutive, float64(w.Breaker().ConsecutiveFailures()))
	}
}

// RunningWriters returns how many sink writer goroutines have not exited yet.
func (p *Pipeline) RunningWriters() int {
	running := 0
	for _, w := range p.writers {
		select {
		case <-w.Done():
		default:
			running++
		}
	}
	return running
}

// watchRecovery reports every time w's breaker closes after being open and clears its breaker
// gauges without waiting for the next sample.
func (p *Pipeline) watchRecovery(ctx context.Context, w *sinkwriter.SinkWriter) {
	reset := w.Breaker().NotifyOnReset()
	for {
		select {
		case <-ctx.Done():
			return
		case <-reset:
			p.meter.SetSinkGauge(w.Name(), types.MetricBreakerState, 0)
			p.meter.SetSinkGauge(w.Name(), types.MetricBreakerConsecutive, float64(w.Breaker().ConsecutiveFailures()))
			p.notifySinkRecovered(w.Name())
		}
	}
}
