package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/builder"
)

type memLoader struct{}

func (memLoader) LoadForIndexing(_ context.Context, id string) (*builder.RecordSnapshot, error) {
	return &builder.RecordSnapshot{ID: id, Type: "Event", Fields: map[string][]string{"id": {id}}}, nil
}

type eventMapper struct{}

func (eventMapper) Project(s *builder.RecordSnapshot) ([]builder.Payload, error) {
	return []builder.Payload{{
		RecordID:   s.ID,
		EntityType: s.Type,
		DocumentID: s.ID,
		Index:      "events",
		Document:   []byte(fmt.Sprintf(`{"id":%q}`, s.ID)),
	}}, nil
}

// flakySink is down until healthy is set.
type flakySink struct {
	healthy int32
	written int64
}

func (s *flakySink) Name() string { return "flaky" }

func (s *flakySink) WriteBatch(_ context.Context, batch []builder.Payload) error {
	if atomic.LoadInt32(&s.healthy) == 0 {
		return errors.New("connection refused")
	}
	atomic.AddInt64(&s.written, int64(len(batch)))
	return nil
}

func (s *flakySink) Close() error { return nil }

func main() {
	ctx := context.Background()
	logger := builder.NewLogger(builder.LoggerWithLevel("warn"))

	cfg := builder.DefaultPipelineConfig()
	cfg.BatchSize = 5
	cfg.MaxRetries = 1
	cfg.RetryInitialBackoff = 10 * time.Millisecond
	cfg.BreakerMaxConsecutiveFailures = 2
	cfg.BreakerResetTimeout = 2 * time.Second

	sink := &flakySink{}
	p, err := builder.NewPipeline(ctx, cfg, memLoader{}, eventMapper{},
		[]builder.NamedSink{builder.Sink("flaky", sink)},
		builder.PipelineWithLogger(logger),
	)
	if err != nil {
		panic(err)
	}

	index := func(from, to int) {
		for i := from; i < to; i++ {
			if err := p.Index(ctx, fmt.Sprintf("evt-%d", i)); err != nil {
				panic(err)
			}
		}
		p.Flush(ctx)
	}

	index(0, 20)
	s := p.Stats().Sinks["flaky"]
	fmt.Printf("While down: state=%v failed=%d rejected=%d\n", s.CircuitState, s.FailedPermanently, s.Rejected)

	atomic.StoreInt32(&sink.healthy, 1)
	if err := p.ResetBreaker("flaky"); err != nil {
		panic(err)
	}

	index(20, 40)
	s = p.Stats().Sinks["flaky"]
	fmt.Printf("After reset: state=%v written=%d\n", s.CircuitState, s.Written)

	if err := p.Close(); err != nil {
		fmt.Println("Close error:", err)
	}
}
