package capacitor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/capacitor"
)

func TestCapacitor_FIFO(t *testing.T) {
	ctx := context.Background()
	c := capacitor.NewCapacitor[int](3)

	for i := 1; i <= 3; i++ {
		if err := c.Put(ctx, i); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}
	if c.Len() != 3 || c.Cap() != 3 {
		t.Fatalf("expected len=3 cap=3, got len=%d cap=%d", c.Len(), c.Cap())
	}
	for want := 1; want <= 3; want++ {
		got, err := c.Take(ctx)
		if err != nil {
			t.Fatalf("take: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
}

func TestCapacitor_PutBlocksWhenFull(t *testing.T) {
	c := capacitor.NewCapacitor[string](1)
	if err := c.Put(context.Background(), "a"); err != nil {
		t.Fatalf("put: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := c.Put(ctx, "b")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded on full capacitor, got %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.Put(context.Background(), "c") }()
	time.Sleep(10 * time.Millisecond)
	if got, _ := c.TryTake(); got != "a" {
		t.Fatalf("expected a, got %q", got)
	}
	if err := <-done; err != nil {
		t.Fatalf("blocked put should complete after take: %v", err)
	}
}

func TestCapacitor_PollTimeout(t *testing.T) {
	c := capacitor.NewCapacitor[int](2)

	start := time.Now()
	if _, ok := c.Poll(40 * time.Millisecond); ok {
		t.Fatalf("expected poll to time out on empty capacitor")
	}
	if elapsed := time.Since(start); elapsed < 35*time.Millisecond {
		t.Fatalf("poll returned too early: %v", elapsed)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = c.Put(context.Background(), 7)
	}()
	if v, ok := c.Poll(time.Second); !ok || v != 7 {
		t.Fatalf("expected 7 from poll, got %d (ok=%v)", v, ok)
	}
}

func TestCapacitor_TakeCancelled(t *testing.T) {
	c := capacitor.NewCapacitor[int](1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Take(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCapacitor_Metadata(t *testing.T) {
	c := capacitor.NewCapacitor[int](0, capacitor.WithComponentMetadata[int]("ingress", "cap-1"))
	meta := c.GetComponentMetadata()
	if meta.Name != "ingress" || meta.ID != "cap-1" || meta.Type != "CAPACITOR" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if c.Cap() != 1 {
		t.Fatalf("expected capacity clamped to 1, got %d", c.Cap())
	}
}
