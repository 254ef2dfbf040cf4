package distributor

import "github.com/joeydtaylor/switchboard/pkg/internal/types"

// WithOutput attaches a named downstream capacitor.
func WithOutput(name string, c types.Capacitor[types.WorkItem]) types.Option[*Distributor] {
	return func(d *Distributor) {
		d.outputs = append(d.outputs, output{name: name, capacitor: c})
	}
}

func WithMeter(m types.Meter) types.Option[*Distributor] {
	return func(d *Distributor) {
		d.meter = m
	}
}

func WithLogger(logger ...types.Logger) types.Option[*Distributor] {
	return func(d *Distributor) {
		d.ConnectLogger(logger...)
	}
}

func WithComponentMetadata(name string, id string) types.Option[*Distributor] {
	return func(d *Distributor) {
		d.SetComponentMetadata(name, id)
	}
}
