package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// Flush blocks until every record indexed before the call has been converted and every resulting
// payload has been written or permanently failed on every sink. Each stage is bounded by its
// configured timeout; a timeout is logged and reported in the result, never returned as an error.
// After Close, Flush waits for Close to finish and reports a complete flush.
func (p *Pipeline) Flush(ctx context.Context) types.FlushReport {
	if ctx == nil {
		ctx = context.Background()
	}
	if atomic.LoadInt32(&p.closing) == 1 {
		select {
		case <-p.closed:
			return types.FlushReport{Quiesced: true, Delivered: true, Stats: p.Stats()}
		case <-ctx.Done():
			return types.FlushReport{Stats: p.Stats()}
		}
	}
	return p.flush(ctx)
}

func (p *Pipeline) flush(ctx context.Context) types.FlushReport {
	start := time.Now()
	p.meter.IncrementCount(types.MetricFlushesRequested)

	report := types.FlushReport{
		Quiesced: p.barrier.AwaitQuiescence(ctx, p.cfg.QuiescenceTimeout),
	}

	marker := types.NewFlushMarker(len(p.writers))
	waitCtx, cancel := context.WithTimeout(ctx, p.cfg.FlushTimeout)
	defer cancel()
	if err := p.ingress.Put(waitCtx, types.FlushItem(marker)); err == nil {
		select {
		case <-marker.Done():
			report.Delivered = true
		case <-p.closed:
			// a concurrent Close drained everything ahead of this marker
			report.Delivered = true
		case <-waitCtx.Done():
		}
	}

	report.Elapsed = time.Since(start)
	report.Stats = p.Stats()
	if !report.Complete() {
		p.meter.IncrementCount(types.MetricFlushesTimedOut)
		p.notifyFlushIncomplete(report, marker.Remaining())
		return report
	}
	p.notifyFlushComplete(report)
	return report
}
