// Package capacitor provides the bounded FIFO buffers that connect pipeline stages. A full
// capacitor blocks producers, which is how backpressure travels from the slowest sink back to
// the conversion workers.
package capacitor

import (
	"context"
	"sync"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
)

// Capacitor is a bounded, concurrency-safe FIFO backed by a buffered channel.
type Capacitor[T any] struct {
	componentMetadata types.ComponentMetadata
	metadataLock      sync.Mutex
	items             chan T
}

// NewCapacitor returns a capacitor holding at most capacity items. A non-positive capacity
// is treated as 1.
func NewCapacitor[T any](capacity int, options ...types.Option[types.Capacitor[T]]) types.Capacitor[T] {
	if capacity <= 0 {
		capacity = 1
	}
	c := &Capacitor[T]{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "CAPACITOR",
		},
		items: make(chan T, capacity),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Put appends item, blocking while the capacitor is full.
func (c *Capacitor[T]) Put(ctx context.Context, item T) error {
	select {
	case c.items <- item:
		return nil
	default:
	}
	select {
	case c.items <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Take removes the oldest item, blocking while the capacitor is empty.
func (c *Capacitor[T]) Take(ctx context.Context) (T, error) {
	select {
	case item := <-c.items:
		return item, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Poll waits up to timeout for an item.
func (c *Capacitor[T]) Poll(timeout time.Duration) (T, bool) {
	select {
	case item := <-c.items:
		return item, true
	default:
	}
	if timeout <= 0 {
		var zero T
		return zero, false
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case item := <-c.items:
		return item, true
	case <-timer.C:
		var zero T
		return zero, false
	}
}

// TryTake returns an item only if one is immediately available.
func (c *Capacitor[T]) TryTake() (T, bool) {
	return c.Poll(0)
}

func (c *Capacitor[T]) Len() int { return len(c.items) }

func (c *Capacitor[T]) Cap() int { return cap(c.items) }

func (c *Capacitor[T]) GetComponentMetadata() types.ComponentMetadata {
	c.metadataLock.Lock()
	defer c.metadataLock.Unlock()
	return c.componentMetadata
}

func (c *Capacitor[T]) SetComponentMetadata(name string, id string) {
	c.metadataLock.Lock()
	defer c.metadataLock.Unlock()
	c.componentMetadata.Name = name
	if id != "" {
		c.componentMetadata.ID = id
	}
}

// WithComponentMetadata sets the capacitor name and id.
func WithComponentMetadata[T any](name string, id string) types.Option[types.Capacitor[T]] {
	return func(c types.Capacitor[T]) {
		c.SetComponentMetadata(name, id)
	}
}
