package wire

import (
	"fmt"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/barrier"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

func (w *Wire) convert(recordID string, reg *barrier.Registration) {
	start := time.Now()
	produced := 0
	var err error

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("wire: conversion of %s panicked: %v", recordID, r)
		}
		reg.ArriveAndDeregister()
		w.gate.Release()

		if err != nil {
			w.meter.IncrementCount(types.MetricTasksFailed)
			w.notifyTaskFailed(recordID, produced, time.Since(start), err)
			return
		}
		w.meter.IncrementCount(types.MetricTasksCompleted)
		w.notifyTaskCompleted(recordID, produced, time.Since(start))
	}()

	produced, err = w.process(recordID)
}

// process runs one conversion. It returns how many payloads reached the ingress capacitor even on
// failure, since those are already downstream.
func (w *Wire) process(recordID string) (int, error) {
	if err := w.ctx.Err(); err != nil {
		return 0, fmt.Errorf("wire: convert %s: %w", recordID, err)
	}

	snapshot, err := w.loader.LoadForIndexing(w.ctx, recordID)
	if err != nil {
		return 0, fmt.Errorf("wire: load %s: %w", recordID, err)
	}
	if snapshot == nil {
		return 0, fmt.Errorf("%w: %s", ErrRecordNotFound, recordID)
	}

	payloads, err := w.mapper.Project(snapshot)
	if err != nil {
		return 0, fmt.Errorf("wire: project %s: %w", recordID, err)
	}

	for i, p := range payloads {
		if p.RecordID == "" {
			p.RecordID = recordID
		}
		p.Sequence = i
		if err := w.ingress.Put(w.ctx, types.PayloadItem(p)); err != nil {
			return i, fmt.Errorf("wire: enqueue %s: %w", recordID, err)
		}
		w.meter.IncrementCount(types.MetricPayloadsProduced)
	}
	return len(payloads), nil
}
