// Package distributor replicates every item on the ingress capacitor to each sink writer's
// capacitor. It runs on a single goroutine so all outputs observe the same order.
package distributor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/joeydtaylor/switchboard/pkg/internal/meter"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
)

type output struct {
	name      string
	capacitor types.Capacitor[types.WorkItem]
}

type Distributor struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	configLock        sync.Mutex

	input   types.Capacitor[types.WorkItem]
	outputs []output
	meter   types.Meter

	started int32
	done    chan struct{}
}

// NewDistributor reads from input. Outputs are attached with WithOutput before Start.
func NewDistributor(input types.Capacitor[types.WorkItem], options ...types.Option[*Distributor]) *Distributor {
	d := &Distributor{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "DISTRIBUTOR",
		},
		input: input,
		done:  make(chan struct{}),
	}
	for _, opt := range options {
		opt(d)
	}
	if d.meter == nil {
		d.meter = meter.NewMeter()
	}
	return d
}

// Start launches the distribution loop once. Later calls are no-ops.
func (d *Distributor) Start(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&d.started, 0, 1) {
		return
	}
	go d.Run(ctx)
}

// Run distributes until the shutdown sentinel has been forwarded or ctx ends. Payload items share
// one *Payload across outputs; sink writers must not mutate it.
func (d *Distributor) Run(ctx context.Context) {
	defer close(d.done)
	d.notifyStart()

	for {
		item, err := d.input.Take(ctx)
		if err != nil {
			d.notifyAbort(err)
			return
		}

		if item.Kind == types.ItemPayload {
			d.meter.IncrementCount(types.MetricPayloadsConsumed)
		}

		if err := d.broadcast(ctx, item); err != nil {
			d.notifyAbort(err)
			return
		}

		switch item.Kind {
		case types.ItemFlush:
			d.notifyMarkerForwarded(item.Marker)
		case types.ItemShutdown:
			d.notifyStop()
			return
		}
	}
}

func (d *Distributor) broadcast(ctx context.Context, item types.WorkItem) error {
	for _, out := range d.outputs {
		if err := out.capacitor.Put(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// Done is closed when Run returns.
func (d *Distributor) Done() <-chan struct{} { return d.done }

// Outputs returns the names of the attached outputs in delivery order.
func (d *Distributor) Outputs() []string {
	names := make([]string, 0, len(d.outputs))
	for _, o := range d.outputs {
		names = append(names, o.name)
	}
	return names
}
