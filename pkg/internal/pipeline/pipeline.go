// Package pipeline assembles the delivery pipeline:
//
//	Index -> admission gate -> conversion pool -> ingress -> distributor -> sink writers -> sinks
//
// Flush waits for every task submitted before it to finish and then for every sink writer to
// acknowledge a flush marker, so that all earlier payloads are written or permanently failed.
// Close drains the whole pipeline before releasing the sink clients.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joeydtaylor/switchboard/pkg/internal/barrier"
	"github.com/joeydtaylor/switchboard/pkg/internal/capacitor"
	"github.com/joeydtaylor/switchboard/pkg/internal/circuitbreaker"
	"github.com/joeydtaylor/switchboard/pkg/internal/distributor"
	"github.com/joeydtaylor/switchboard/pkg/internal/meter"
	"github.com/joeydtaylor/switchboard/pkg/internal/sinkwriter"
	"github.com/joeydtaylor/switchboard/pkg/internal/surgeprotector"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
	"github.com/joeydtaylor/switchboard/pkg/internal/wire"
)

type Pipeline struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	configLock        sync.Mutex

	cfg    types.PipelineConfig
	ctx    context.Context
	cancel context.CancelFunc

	loader     types.RecordLoader
	mapper     types.DocumentMapper
	sinks      []types.NamedSink
	ownsLoader bool

	meter       types.Meter
	gate        types.SurgeProtector
	barrier     *barrier.Barrier
	ingress     types.Capacitor[types.WorkItem]
	wire        *wire.Wire
	distributor *distributor.Distributor
	writers     []*sinkwriter.SinkWriter
	writerIndex map[string]*sinkwriter.SinkWriter
	buffers     map[string]types.Capacitor[types.WorkItem]

	registerer      prometheus.Registerer
	monitorInterval time.Duration
	background      sync.WaitGroup

	closing   int32
	closeOnce sync.Once
	closeErr  error
	closed    chan struct{}
}

// New validates the configuration and collaborators, pings every sink that supports it and
// starts the pipeline. Any failure is returned before a goroutine is started; the sink clients
// stay owned by the caller in that case.
func New(ctx context.Context, cfg types.PipelineConfig, loader types.RecordLoader, mapper types.DocumentMapper, sinks []types.NamedSink, options ...types.Option[*Pipeline]) (*Pipeline, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateCollaborators(loader, mapper, sinks); err != nil {
		return nil, err
	}

	p := &Pipeline{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "PIPELINE",
		},
		cfg:         cfg,
		loader:      loader,
		mapper:      mapper,
		sinks:       append([]types.NamedSink(nil), sinks...),
		writerIndex: make(map[string]*sinkwriter.SinkWriter, len(sinks)),
		buffers:     make(map[string]types.Capacitor[types.WorkItem], len(sinks)),
		closed:      make(chan struct{}),
	}
	for _, opt := range options {
		opt(p)
	}

	if err := p.pingSinks(ctx); err != nil {
		return nil, err
	}

	p.build()

	if p.registerer != nil {
		collector, ok := p.meter.(prometheus.Collector)
		if !ok {
			return nil, errors.New("pipeline: meter does not implement prometheus.Collector")
		}
		if err := p.registerer.Register(collector); err != nil {
			return nil, fmt.Errorf("pipeline: register metrics: %w", err)
		}
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.start()
	return p, nil
}

func validateCollaborators(loader types.RecordLoader, mapper types.DocumentMapper, sinks []types.NamedSink) error {
	if loader == nil {
		return errors.New("pipeline: record loader is required")
	}
	if mapper == nil {
		return errors.New("pipeline: document mapper is required")
	}
	if len(sinks) == 0 {
		return errors.New("pipeline: at least one sink is required")
	}

	seen := make(map[string]struct{}, len(sinks))
	for _, s := range sinks {
		if s.Name == "" || s.Client == nil {
			return fmt.Errorf("pipeline: sink %q must have a name and a client", s.Name)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("pipeline: duplicate sink name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
	}

	for _, c := range []interface{}{loader, mapper} {
		if v, ok := c.(types.Validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("pipeline: invalid configuration: %w", err)
			}
		}
	}
	return nil
}

func (p *Pipeline) pingSinks(ctx context.Context) error {
	for _, s := range p.sinks {
		pinger, ok := s.Client.(types.Pinger)
		if !ok {
			continue
		}
		if err := pinger.Ping(ctx); err != nil {
			p.notifySinkUnreachable(s.Name, err)
			return fmt.Errorf("pipeline: sink %s unreachable: %w", s.Name, err)
		}
	}
	return nil
}

func (p *Pipeline) build() {
	cfg := p.cfg
	loggers := p.snapshotLoggers()

	names := make([]string, 0, len(p.sinks))
	for _, s := range p.sinks {
		names = append(names, s.Name)
	}
	if p.meter == nil {
		p.meter = meter.NewMeter(meter.WithLogger(loggers...))
	}
	for _, n := range names {
		p.meter.RegisterSink(n)
	}

	p.gate = surgeprotector.NewSurgeProtector(
		surgeprotector.WithMaxInFlight(cfg.MaxConcurrentTasks),
		surgeprotector.WithLogger(loggers...),
		surgeprotector.WithComponentMetadata("admission", ""),
	)
	p.barrier = barrier.NewBarrier(barrier.WithLogger(loggers...))
	p.ingress = capacitor.NewCapacitor[types.WorkItem](cfg.IngressBufferCapacity,
		capacitor.WithComponentMetadata[types.WorkItem]("ingress", ""))

	distOpts := []types.Option[*distributor.Distributor]{
		distributor.WithMeter(p.meter),
		distributor.WithLogger(loggers...),
	}
	for _, s := range p.sinks {
		buf := capacitor.NewCapacitor[types.WorkItem](cfg.SinkBufferCapacity,
			capacitor.WithComponentMetadata[types.WorkItem](s.Name, ""))
		cb := circuitbreaker.NewCircuitBreaker(cfg.BreakerMaxConsecutiveFailures, cfg.BreakerResetTimeout,
			circuitbreaker.WithSingleProbe(cfg.BreakerSingleProbe),
			circuitbreaker.WithLogger(loggers...),
			circuitbreaker.WithComponentMetadata(s.Name, ""),
		)

		writerOpts := []types.Option[*sinkwriter.SinkWriter]{
			sinkwriter.WithBatchSize(cfg.BatchSize),
			sinkwriter.WithMaxWait(cfg.MaxWait),
			sinkwriter.WithPollInterval(cfg.PollInterval),
			sinkwriter.WithRetry(cfg.MaxRetries, cfg.RetryInitialBackoff, cfg.RetryMaxBackoff),
			sinkwriter.WithCircuitBreaker(cb),
			sinkwriter.WithMeter(p.meter),
			sinkwriter.WithLogger(loggers...),
		}
		if cfg.WriteRatePerSecond > 0 {
			writerOpts = append(writerOpts, sinkwriter.WithRateLimit(cfg.WriteRatePerSecond, cfg.WriteBurst))
		}

		w := sinkwriter.NewSinkWriter(s.Name, s.Client, buf, writerOpts...)
		p.writers = append(p.writers, w)
		p.writerIndex[s.Name] = w
		p.buffers[s.Name] = buf
		distOpts = append(distOpts, distributor.WithOutput(s.Name, buf))
	}
	p.distributor = distributor.NewDistributor(p.ingress, distOpts...)
}

func (p *Pipeline) start() {
	p.wire = wire.NewWire(p.ctx, p.loader, p.mapper, p.ingress,
		wire.WithConversionThreads(p.cfg.ConversionThreads),
		wire.WithQueueCapacity(p.cfg.MaxConcurrentTasks),
		wire.WithSurgeProtector(p.gate),
		wire.WithBarrier(p.barrier),
		wire.WithMeter(p.meter),
		wire.WithLogger(p.snapshotLoggers()...),
	)

	for _, w := range p.writers {
		w.Start(p.ctx)
		p.background.Add(1)
		go func(w *sinkwriter.SinkWriter) {
			defer p.background.Done()
			p.watchRecovery(p.ctx, w)
		}(w)
	}
	p.distributor.Start(p.ctx)

	if p.monitorInterval > 0 {
		p.background.Add(1)
		go func() {
			defer p.background.Done()
			p.sampleLoop(p.ctx, p.monitorInterval)
		}()
		if m, ok := p.meter.(*meter.Meter); ok {
			p.background.Add(1)
			go func() {
				defer p.background.Done()
				m.Monitor(p.ctx, p.monitorInterval)
			}()
		}
	}

	p.notifyStart()
}

// Index submits recordID for conversion. It blocks while the admission bound is reached.
func (p *Pipeline) Index(ctx context.Context, recordID string) error {
	if atomic.LoadInt32(&p.closing) == 1 {
		return types.ErrPipelineClosed
	}
	err := p.wire.Submit(ctx, recordID)
	if errors.Is(err, wire.ErrWireClosed) {
		return types.ErrPipelineClosed
	}
	return err
}

// Stats returns the counters with each sink's current breaker state.
func (p *Pipeline) Stats() types.Stats {
	p.sampleGauges()
	stats := p.meter.Snapshot()
	for _, w := range p.writers {
		s := stats.Sinks[w.Name()]
		s.Name = w.Name()
		s.CircuitState = w.Breaker().State()
		s.ConsecutiveFailures = w.Breaker().ConsecutiveFailures()
		stats.Sinks[w.Name()] = s
	}
	return stats
}

// ResetBreaker forces the named sink's circuit breaker closed.
func (p *Pipeline) ResetBreaker(sink string) error {
	w, ok := p.writerIndex[sink]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrUnknownSink, sink)
	}
	w.Breaker().Reset()
	p.notifyBreakerReset(sink)
	return nil
}

// Config returns the effective configuration after defaults.
func (p *Pipeline) Config() types.PipelineConfig { return p.cfg }

// Sinks returns the sink names in delivery order.
func (p *Pipeline) Sinks() []string { return p.distributor.Outputs() }

// Meter exposes the pipeline counters, for example to register them with another registry.
func (p *Pipeline) Meter() types.Meter { return p.meter }
