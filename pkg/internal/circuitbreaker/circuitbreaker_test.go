package circuitbreaker_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/circuitbreaker"
	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

func TestCircuitBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	cb := circuitbreaker.NewCircuitBreaker(3, time.Hour)

	for i := 0; i < 2; i++ {
		cb.RecordFailure()
		if cb.IsOpen() {
			t.Fatalf("breaker opened after %d failures, threshold is 3", i+1)
		}
	}
	cb.RecordFailure()
	if !cb.IsOpen() {
		t.Fatalf("expected breaker to be open after 3 consecutive failures")
	}
	if cb.State() != types.CircuitOpen {
		t.Fatalf("expected OPEN state, got %s", cb.State())
	}
}

func TestCircuitBreakerSuccessResetsCount(t *testing.T) {
	cb := circuitbreaker.NewCircuitBreaker(2, time.Hour)

	cb.RecordFailure()
	cb.RecordSuccess()
	if got := cb.ConsecutiveFailures(); got != 0 {
		t.Fatalf("expected counter reset by success, got %d", got)
	}
	cb.RecordFailure()
	if cb.IsOpen() {
		t.Fatalf("non-consecutive failures must not trip the breaker")
	}
}

func TestCircuitBreakerAutoResetsThroughIsOpen(t *testing.T) {
	cb := circuitbreaker.NewCircuitBreaker(1, 50*time.Millisecond)

	cb.RecordFailure()
	if !cb.IsOpen() {
		t.Fatalf("expected open breaker")
	}

	time.Sleep(80 * time.Millisecond)

	// State does not apply the timeout; only IsOpen does.
	if cb.State() != types.CircuitOpen {
		t.Fatalf("expected State to report OPEN before IsOpen is called")
	}
	if cb.IsOpen() {
		t.Fatalf("expected breaker to close once the reset timeout elapsed")
	}
	if cb.State() != types.CircuitClosed || cb.ConsecutiveFailures() != 0 {
		t.Fatalf("expected closed breaker with cleared count")
	}

	select {
	case <-cb.NotifyOnReset():
	default:
		t.Fatalf("expected reset notification")
	}
}

func TestCircuitBreakerManualReset(t *testing.T) {
	cb := circuitbreaker.NewCircuitBreaker(2, time.Hour)

	cb.RecordFailure()
	cb.RecordFailure()
	if !cb.IsOpen() {
		t.Fatalf("expected open breaker")
	}
	cb.Reset()
	if cb.IsOpen() {
		t.Fatalf("expected manual reset to close the breaker")
	}
	if cb.ConsecutiveFailures() != 0 {
		t.Fatalf("expected reset to clear the failure count")
	}
}

func TestCircuitBreakerSingleProbe(t *testing.T) {
	cb := circuitbreaker.NewCircuitBreaker(1, 20*time.Millisecond, circuitbreaker.WithSingleProbe(true))

	cb.RecordFailure()
	time.Sleep(40 * time.Millisecond)

	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !cb.IsOpen() {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	if allowed != 1 {
		t.Fatalf("expected exactly one probe to be allowed, got %d", allowed)
	}

	cb.RecordSuccess()
	if cb.IsOpen() {
		t.Fatalf("expected breaker to admit traffic after a successful probe")
	}
}

func TestCircuitBreakerFailedProbeReopens(t *testing.T) {
	cb := circuitbreaker.NewCircuitBreaker(3, 20*time.Millisecond, circuitbreaker.WithSingleProbe(true))

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	time.Sleep(40 * time.Millisecond)
	if cb.IsOpen() {
		t.Fatalf("expected the probe to be allowed")
	}
	cb.RecordFailure()
	if !cb.IsOpen() {
		t.Fatalf("expected a failed probe to reopen the breaker immediately")
	}
}

func TestCircuitBreakerMetadataAndLogger(t *testing.T) {
	logger := internallogger.NewLogger(internallogger.LoggerWithLevel("error"))
	cb := circuitbreaker.NewCircuitBreaker(1, time.Second,
		circuitbreaker.WithLogger(logger),
		circuitbreaker.WithComponentMetadata("es-breaker", "cb-1"),
	)

	meta := cb.GetComponentMetadata()
	if meta.Name != "es-breaker" || meta.ID != "cb-1" || meta.Type != "CIRCUIT_BREAKER" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	cb.RecordFailure()
}
