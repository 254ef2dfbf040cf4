// Package wire converts record ids into sink payloads on a bounded worker pool.
//
// Each submission passes the admission gate, registers with the quiescence barrier and is then
// scheduled on a fixed pond pool. A task loads the record, projects it and puts every payload on
// the ingress capacitor, blocking there when downstream is saturated. The permit and the barrier
// registration are released exactly once on every exit path, including panics.
package wire

import (
	"context"
	"errors"
	"sync"

	"github.com/alitto/pond"

	"github.com/joeydtaylor/switchboard/pkg/internal/barrier"
	"github.com/joeydtaylor/switchboard/pkg/internal/meter"
	"github.com/joeydtaylor/switchboard/pkg/internal/surgeprotector"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
)

var (
	// ErrWireClosed is returned by Submit once Stop has begun.
	ErrWireClosed = errors.New("wire: closed to new submissions")

	// ErrDrainTimeout is returned by Stop when running tasks had to be force-cancelled.
	ErrDrainTimeout = errors.New("wire: conversion pool did not drain before timeout")

	// ErrRecordNotFound is the task failure recorded when a loader returns no snapshot.
	ErrRecordNotFound = errors.New("wire: record not found")
)

// Wire is the conversion worker pool.
type Wire struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	configLock        sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	loader  types.RecordLoader
	mapper  types.DocumentMapper
	ingress types.Capacitor[types.WorkItem]

	gate    types.SurgeProtector
	barrier *barrier.Barrier
	meter   types.Meter

	threads       int
	queueCapacity int
	pool          *pond.WorkerPool

	closeLock sync.RWMutex
	closed    bool
	stopOnce  sync.Once
	stopErr   error
}

// NewWire builds a wire that reads records with loader, projects them with mapper and feeds
// ingress. Tasks run under a context derived from ctx; Stop cancels it when the drain times out.
func NewWire(ctx context.Context, loader types.RecordLoader, mapper types.DocumentMapper, ingress types.Capacitor[types.WorkItem], options ...types.Option[*Wire]) *Wire {
	if ctx == nil {
		ctx = context.Background()
	}
	taskCtx, cancel := context.WithCancel(ctx)

	w := &Wire{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "WIRE",
		},
		ctx:     taskCtx,
		cancel:  cancel,
		loader:  loader,
		mapper:  mapper,
		ingress: ingress,
		threads: 1,
	}

	for _, opt := range options {
		opt(w)
	}

	if w.gate == nil {
		w.gate = surgeprotector.NewSurgeProtector()
	}
	if w.barrier == nil {
		w.barrier = barrier.NewBarrier()
	}
	if w.meter == nil {
		w.meter = meter.NewMeter()
	}
	if w.queueCapacity < w.threads {
		w.queueCapacity = 2 * w.threads
	}

	w.pool = pond.New(w.threads, w.queueCapacity, pond.MinWorkers(w.threads))
	return w
}
