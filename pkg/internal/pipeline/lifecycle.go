package pipeline

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

// Close stops admission, flushes, stops the conversion pool, delivers the shutdown sentinel, waits
// for the distributor and every sink writer, and closes the sink clients. Payloads still buffered
// after that, which only happens when the parent context was cancelled, are counted as permanently
// failed for every sink. Close is idempotent; later calls return the first result.
func (p *Pipeline) Close() error {
	p.closeOnce.Do(func() {
		atomic.StoreInt32(&p.closing, 1)
		p.notifyClosing()

		var result *multierror.Error

		report := p.flush(p.ctx)

		if err := p.wire.Stop(p.cfg.PoolShutdownTimeout); err != nil {
			result = multierror.Append(result, err)
		}

		if err := p.ingress.Put(p.ctx, types.ShutdownItem()); err != nil {
			result = multierror.Append(result, fmt.Errorf("pipeline: deliver shutdown sentinel: %w", err))
		}
		<-p.distributor.Done()
		for _, w := range p.writers {
			<-w.Done()
		}

		for _, s := range p.sinks {
			if err := s.Client.Close(); err != nil {
				result = multierror.Append(result, fmt.Errorf("pipeline: close sink %s: %w", s.Name, err))
			}
		}

		if closer, ok := p.loader.(io.Closer); ok && p.ownsLoader {
			if err := closer.Close(); err != nil {
				result = multierror.Append(result, fmt.Errorf("pipeline: close loader: %w", err))
			}
		}

		leftover := p.drainLeftovers()

		p.cancel()
		p.background.Wait()
		if p.registerer != nil {
			if collector, ok := p.meter.(prometheus.Collector); ok && !p.registerer.Unregister(collector) {
				p.NotifyLoggers(types.WarnLevel, "Pipeline metrics were not registered at close",
					logschema.FieldComponent, p.GetComponentMetadata(),
					logschema.FieldEvent, "Close",
					logschema.FieldResult, logschema.ResultFailure,
				)
			}
		}

		p.closeErr = result.ErrorOrNil()
		p.notifyClosed(report, leftover, p.closeErr)
		close(p.closed)
	})
	return p.closeErr
}

// drainLeftovers accounts for work stranded in the capacitors and releases any flush markers so
// no Flush caller stays blocked.
func (p *Pipeline) drainLeftovers() uint64 {
	var leftover uint64
	for {
		item, ok := p.ingress.TryTake()
		if !ok {
			break
		}
		switch item.Kind {
		case types.ItemPayload:
			leftover++
			for _, w := range p.writers {
				p.meter.AddSinkCount(w.Name(), types.MetricSinkFailed, 1)
			}
		case types.ItemFlush:
			for range p.writers {
				item.Marker.Arrive()
			}
		}
	}

	for name, buf := range p.buffers {
		for {
			item, ok := buf.TryTake()
			if !ok {
				break
			}
			switch item.Kind {
			case types.ItemPayload:
				p.meter.AddSinkCount(name, types.MetricSinkFailed, 1)
			case types.ItemFlush:
				item.Marker.Arrive()
			}
		}
	}
	return leftover
}

// IsClosed reports whether Close has completed.
func (p *Pipeline) IsClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}
