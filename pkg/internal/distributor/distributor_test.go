package distributor_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/capacitor"
	"github.com/joeydtaylor/switchboard/pkg/internal/distributor"
	"github.com/joeydtaylor/switchboard/pkg/internal/meter"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

func newFanOut(t *testing.T, sinks ...string) (types.Capacitor[types.WorkItem], map[string]types.Capacitor[types.WorkItem], *distributor.Distributor, types.Meter) {
	t.Helper()
	in := capacitor.NewCapacitor[types.WorkItem](32)
	outs := make(map[string]types.Capacitor[types.WorkItem], len(sinks))
	m := meter.NewMeter()
	opts := []types.Option[*distributor.Distributor]{distributor.WithMeter(m)}
	for _, s := range sinks {
		c := capacitor.NewCapacitor[types.WorkItem](32)
		outs[s] = c
		opts = append(opts, distributor.WithOutput(s, c))
	}
	return in, outs, distributor.NewDistributor(in, opts...), m
}

func TestDistributor_ReplicatesInOrder(t *testing.T) {
	in, outs, d, m := newFanOut(t, "es", "sparql", "file")
	ctx := context.Background()
	d.Start(ctx)

	for i := 0; i < 5; i++ {
		if err := in.Put(ctx, types.PayloadItem(types.Payload{RecordID: fmt.Sprintf("r%d", i)})); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if err := in.Put(ctx, types.ShutdownItem()); err != nil {
		t.Fatalf("put sentinel: %v", err)
	}

	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatalf("distributor did not exit after sentinel")
	}

	for name, out := range outs {
		for i := 0; i < 5; i++ {
			item, ok := out.TryTake()
			if !ok || item.Kind != types.ItemPayload {
				t.Fatalf("%s: expected payload %d", name, i)
			}
			if want := fmt.Sprintf("r%d", i); item.Payload.RecordID != want {
				t.Fatalf("%s: expected %s, got %s", name, want, item.Payload.RecordID)
			}
		}
		if item, ok := out.TryTake(); !ok || item.Kind != types.ItemShutdown {
			t.Fatalf("%s: expected shutdown sentinel last", name)
		}
	}
	if got := m.GetMetricCount(types.MetricPayloadsConsumed); got != 5 {
		t.Fatalf("expected 5 consumed, got %d", got)
	}
}

func TestDistributor_SharesFlushMarker(t *testing.T) {
	in, outs, d, _ := newFanOut(t, "a", "b")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	marker := types.NewFlushMarker(len(outs))
	if err := in.Put(ctx, types.FlushItem(marker)); err != nil {
		t.Fatalf("put: %v", err)
	}

	for name, out := range outs {
		item, err := out.Take(ctx)
		if err != nil || item.Kind != types.ItemFlush {
			t.Fatalf("%s: expected marker, got %v %v", name, item.Kind, err)
		}
		if item.Marker != marker {
			t.Fatalf("%s: expected the same marker instance", name)
		}
		item.Marker.Arrive()
	}

	waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
	defer waitCancel()
	if err := marker.Wait(waitCtx); err != nil {
		t.Fatalf("expected marker completion, got %v", err)
	}
}

func TestDistributor_ExitsOnCancel(t *testing.T) {
	_, outs, d, _ := newFanOut(t, "a")
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	d.Start(ctx)
	cancel()

	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatalf("distributor ignored cancellation")
	}
	if outs["a"].Len() != 0 {
		t.Fatalf("expected nothing forwarded")
	}
	if names := d.Outputs(); len(names) != 1 || names[0] != "a" {
		t.Fatalf("unexpected outputs %v", names)
	}
}
