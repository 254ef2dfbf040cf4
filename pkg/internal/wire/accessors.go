package wire

import (
	"github.com/joeydtaylor/switchboard/pkg/internal/barrier"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// Gate returns the admission gate.
func (w *Wire) Gate() types.SurgeProtector { return w.gate }

// Barrier returns the quiescence barrier tasks register with.
func (w *Wire) Barrier() *barrier.Barrier { return w.barrier }

func (w *Wire) Threads() int { return w.threads }

// RunningWorkers returns the number of live pool workers.
func (w *Wire) RunningWorkers() int { return w.pool.RunningWorkers() }

func (w *Wire) GetComponentMetadata() types.ComponentMetadata {
	w.configLock.Lock()
	defer w.configLock.Unlock()
	return w.componentMetadata
}

func (w *Wire) SetComponentMetadata(name string, id string) {
	w.configLock.Lock()
	defer w.configLock.Unlock()
	w.componentMetadata.Name = name
	if id != "" {
		w.componentMetadata.ID = id
	}
}

func (w *Wire) ConnectLogger(loggers ...types.Logger) {
	w.configLock.Lock()
	defer w.configLock.Unlock()
	for _, l := range loggers {
		if l != nil {
			w.loggers = append(w.loggers, l)
		}
	}
}
