package meter

import "github.com/joeydtaylor/switchboard/pkg/internal/types"

func WithLogger(logger ...types.Logger) types.Option[types.Meter] {
	return func(m types.Meter) {
		m.ConnectLogger(logger...)
	}
}

func WithComponentMetadata(name string, id string) types.Option[types.Meter] {
	return func(m types.Meter) {
		m.SetComponentMetadata(name, id)
	}
}

// WithNamespace sets the Prometheus namespace prefix. The default is "switchboard".
func WithNamespace(ns string) types.Option[types.Meter] {
	return func(m types.Meter) {
		if concrete, ok := m.(*Meter); ok && ns != "" {
			concrete.setNamespace(ns)
		}
	}
}

// WithSinks pre-registers sink counters.
func WithSinks(names ...string) types.Option[types.Meter] {
	return func(m types.Meter) {
		for _, n := range names {
			m.RegisterSink(n)
		}
	}
}
