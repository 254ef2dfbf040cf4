package wire_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/barrier"
	"github.com/joeydtaylor/switchboard/pkg/internal/capacitor"
	"github.com/joeydtaylor/switchboard/pkg/internal/meter"
	"github.com/joeydtaylor/switchboard/pkg/internal/surgeprotector"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/wire"
)

type fakeLoader struct {
	delay   time.Duration
	fail    map[string]error
	block   bool
	active  int32
	maxSeen int32
}

func (l *fakeLoader) LoadForIndexing(ctx context.Context, id string) (*types.RecordSnapshot, error) {
	n := atomic.AddInt32(&l.active, 1)
	defer atomic.AddInt32(&l.active, -1)
	for {
		prev := atomic.LoadInt32(&l.maxSeen)
		if n <= prev || atomic.CompareAndSwapInt32(&l.maxSeen, prev, n) {
			break
		}
	}

	if l.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if err := l.fail[id]; err != nil {
		return nil, err
	}
	if id == "missing" {
		return nil, nil
	}
	return &types.RecordSnapshot{ID: id, Type: "Person", Fields: map[string][]string{"name": {id}}}, nil
}

type fakeMapper struct {
	perRecord int
	panicOn   string
}

func (m fakeMapper) Project(s *types.RecordSnapshot) ([]types.Payload, error) {
	if s.ID == m.panicOn {
		panic("mapper exploded")
	}
	n := m.perRecord
	if n == 0 {
		n = 1
	}
	out := make([]types.Payload, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, types.Payload{
			EntityType: s.Type,
			DocumentID: fmt.Sprintf("%s-%d", s.ID, i),
			Document:   []byte(`{}`),
		})
	}
	return out, nil
}

func drain(c types.Capacitor[types.WorkItem]) []types.Payload {
	var out []types.Payload
	for {
		item, ok := c.TryTake()
		if !ok {
			return out
		}
		out = append(out, *item.Payload)
	}
}

func TestWire_ConvertsRecordsIntoIngress(t *testing.T) {
	ingress := capacitor.NewCapacitor[types.WorkItem](64)
	m := meter.NewMeter()
	b := barrier.NewBarrier()
	w := wire.NewWire(context.Background(), &fakeLoader{}, fakeMapper{perRecord: 2}, ingress,
		wire.WithConversionThreads(4),
		wire.WithBarrier(b),
		wire.WithMeter(m),
	)

	for i := 0; i < 10; i++ {
		if err := w.Submit(context.Background(), fmt.Sprintf("r%d", i)); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if !b.AwaitQuiescence(context.Background(), 2*time.Second) {
		t.Fatalf("expected quiescence")
	}

	payloads := drain(ingress)
	if len(payloads) != 20 {
		t.Fatalf("expected 20 payloads, got %d", len(payloads))
	}
	for _, p := range payloads {
		if p.RecordID == "" {
			t.Fatalf("expected record id stamped on payload: %+v", p)
		}
	}
	if got := m.GetMetricCount(types.MetricPayloadsProduced); got != 20 {
		t.Fatalf("expected 20 produced, got %d", got)
	}
	if got := m.GetMetricCount(types.MetricTasksCompleted); got != 10 {
		t.Fatalf("expected 10 completed tasks, got %d", got)
	}
	if err := w.Stop(time.Second); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestWire_AdmissionBoundsConcurrentConversions(t *testing.T) {
	ingress := capacitor.NewCapacitor[types.WorkItem](256)
	gate := surgeprotector.NewSurgeProtector(surgeprotector.WithMaxInFlight(3))
	loader := &fakeLoader{delay: 10 * time.Millisecond}
	w := wire.NewWire(context.Background(), loader, fakeMapper{}, ingress,
		wire.WithConversionThreads(8),
		wire.WithQueueCapacity(8),
		wire.WithSurgeProtector(gate),
	)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := w.Submit(context.Background(), fmt.Sprintf("r%d", i)); err != nil {
				t.Errorf("submit: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if err := w.Stop(5 * time.Second); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if peak := gate.PeakInFlight(); peak > 3 {
		t.Fatalf("admission bound exceeded: peak %d", peak)
	}
	if seen := atomic.LoadInt32(&loader.maxSeen); seen > 3 {
		t.Fatalf("more than 3 conversions ran at once: %d", seen)
	}
	if gate.InFlight() != 0 {
		t.Fatalf("expected all permits released, got %d", gate.InFlight())
	}
	if n := len(drain(ingress)); n != 30 {
		t.Fatalf("expected 30 payloads, got %d", n)
	}
}

func TestWire_FailuresReleasePermitsAndDeregister(t *testing.T) {
	ingress := capacitor.NewCapacitor[types.WorkItem](16)
	gate := surgeprotector.NewSurgeProtector(surgeprotector.WithMaxInFlight(2))
	b := barrier.NewBarrier()
	m := meter.NewMeter()
	loader := &fakeLoader{fail: map[string]error{"bad": errors.New("connection reset")}}
	w := wire.NewWire(context.Background(), loader, fakeMapper{panicOn: "boom"}, ingress,
		wire.WithConversionThreads(2),
		wire.WithSurgeProtector(gate),
		wire.WithBarrier(b),
		wire.WithMeter(m),
	)

	for _, id := range []string{"bad", "boom", "missing", "ok"} {
		if err := w.Submit(context.Background(), id); err != nil {
			t.Fatalf("submit %s: %v", id, err)
		}
	}
	if !b.AwaitQuiescence(context.Background(), 2*time.Second) {
		t.Fatalf("failed tasks must still deregister")
	}

	if got := m.GetMetricCount(types.MetricTasksFailed); got != 3 {
		t.Fatalf("expected 3 failed tasks, got %d", got)
	}
	if got := m.GetMetricCount(types.MetricTasksCompleted); got != 1 {
		t.Fatalf("expected 1 completed task, got %d", got)
	}
	if gate.InFlight() != 0 || b.Outstanding() != 0 {
		t.Fatalf("expected no leaked permits or registrations: inFlight=%d outstanding=%d", gate.InFlight(), b.Outstanding())
	}
	_ = w.Stop(time.Second)
}

func TestWire_SubmitAfterStopIsRejected(t *testing.T) {
	w := wire.NewWire(context.Background(), &fakeLoader{}, fakeMapper{}, capacitor.NewCapacitor[types.WorkItem](4))
	if err := w.Stop(time.Second); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := w.Submit(context.Background(), "late"); !errors.Is(err, wire.ErrWireClosed) {
		t.Fatalf("expected ErrWireClosed, got %v", err)
	}
	if err := w.Stop(time.Second); err != nil {
		t.Fatalf("second stop should return the first result, got %v", err)
	}
}

func TestWire_CancelledAdmissionSchedulesNothing(t *testing.T) {
	gate := surgeprotector.NewSurgeProtector(surgeprotector.WithMaxInFlight(1))
	loader := &fakeLoader{block: true}
	m := meter.NewMeter()
	w := wire.NewWire(context.Background(), loader, fakeMapper{}, capacitor.NewCapacitor[types.WorkItem](4),
		wire.WithSurgeProtector(gate),
		wire.WithMeter(m),
	)

	if err := w.Submit(context.Background(), "holder"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := w.Submit(ctx, "waiter"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if got := m.GetMetricCount(types.MetricTasksSubmitted); got != 1 {
		t.Fatalf("cancelled submission must not be scheduled, submitted=%d", got)
	}

	if err := w.Stop(20 * time.Millisecond); !errors.Is(err, wire.ErrDrainTimeout) {
		t.Fatalf("expected forced drain, got %v", err)
	}
	if gate.InFlight() != 0 {
		t.Fatalf("expected force-cancelled task to release its permit")
	}
}

func TestWire_StopWaitsForBackpressuredTasks(t *testing.T) {
	ingress := capacitor.NewCapacitor[types.WorkItem](1)
	w := wire.NewWire(context.Background(), &fakeLoader{}, fakeMapper{perRecord: 3}, ingress,
		wire.WithConversionThreads(1),
	)
	if err := w.Submit(context.Background(), "r1"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	var taken int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		for atomic.LoadInt32(&taken) < 3 {
			if _, err := ingress.Take(context.Background()); err == nil {
				atomic.AddInt32(&taken, 1)
			}
		}
	}()

	if err := w.Stop(2 * time.Second); err != nil {
		t.Fatalf("stop: %v", err)
	}
	<-done
	if taken != 3 {
		t.Fatalf("expected all payloads delivered before stop returned, got %d", taken)
	}
}
