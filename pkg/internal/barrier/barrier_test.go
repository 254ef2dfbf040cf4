package barrier_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/barrier"
)

func TestBarrier_QuiescentWhenEmpty(t *testing.T) {
	b := barrier.NewBarrier()
	if !b.AwaitQuiescence(context.Background(), 10*time.Millisecond) {
		t.Fatalf("expected immediate quiescence with no registrations")
	}
}

func TestBarrier_WaitsForPriorRegistrations(t *testing.T) {
	b := barrier.NewBarrier()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		reg := b.Register()
		wg.Add(1)
		go func(d time.Duration) {
			defer wg.Done()
			time.Sleep(d)
			reg.ArriveAndDeregister()
		}(time.Duration(i*10) * time.Millisecond)
	}

	if !b.AwaitQuiescence(context.Background(), time.Second) {
		t.Fatalf("expected quiescence once all tasks arrived")
	}
	if b.Outstanding() != 0 {
		t.Fatalf("expected zero outstanding, got %d", b.Outstanding())
	}
	wg.Wait()
}

func TestBarrier_IgnoresLaterRegistrations(t *testing.T) {
	b := barrier.NewBarrier()
	early := b.Register()

	result := make(chan bool, 1)
	go func() { result <- b.AwaitQuiescence(context.Background(), time.Second) }()

	// give the waiter time to close the phase before registering more work
	time.Sleep(20 * time.Millisecond)
	late := b.Register()
	defer late.ArriveAndDeregister()

	early.ArriveAndDeregister()
	select {
	case ok := <-result:
		if !ok {
			t.Fatalf("expected quiescence for the early phase")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("waiter blocked on a registration made after the call")
	}
	if b.Outstanding() != 1 {
		t.Fatalf("expected the late task to remain outstanding, got %d", b.Outstanding())
	}
}

func TestBarrier_TimeoutReportsFalse(t *testing.T) {
	b := barrier.NewBarrier()
	reg := b.Register()
	defer reg.ArriveAndDeregister()

	start := time.Now()
	if b.AwaitQuiescence(context.Background(), 30*time.Millisecond) {
		t.Fatalf("expected timeout with an outstanding task")
	}
	if time.Since(start) < 25*time.Millisecond {
		t.Fatalf("await returned before the timeout")
	}
}

func TestBarrier_CancelledContext(t *testing.T) {
	b := barrier.NewBarrier()
	reg := b.Register()
	defer reg.ArriveAndDeregister()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if b.AwaitQuiescence(ctx, time.Second) {
		t.Fatalf("expected false on cancelled context")
	}
}

func TestBarrier_DeregisterIsIdempotent(t *testing.T) {
	b := barrier.NewBarrier()
	first := b.Register()
	second := b.Register()

	first.ArriveAndDeregister()
	first.ArriveAndDeregister()
	if b.Outstanding() != 1 {
		t.Fatalf("double deregistration must count once; outstanding = %d", b.Outstanding())
	}
	second.ArriveAndDeregister()
	if b.Outstanding() != 0 {
		t.Fatalf("expected zero outstanding, got %d", b.Outstanding())
	}
}
