package types

import (
	"context"
	"sync"
	"sync/atomic"
)

// ItemKind tags the variant carried by a WorkItem.
type ItemKind uint8

const (
	ItemPayload ItemKind = iota
	ItemFlush
	ItemShutdown
)

func (k ItemKind) String() string {
	switch k {
	case ItemPayload:
		return "payload"
	case ItemFlush:
		return "flush"
	case ItemShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// WorkItem is what travels through capacitors: a payload, a flush marker, or the shutdown sentinel.
type WorkItem struct {
	Kind    ItemKind
	Payload *Payload
	Marker  *FlushMarker
}

// PayloadItem wraps a payload.
func PayloadItem(p Payload) WorkItem {
	return WorkItem{Kind: ItemPayload, Payload: &p}
}

// FlushItem wraps a flush marker.
func FlushItem(m *FlushMarker) WorkItem {
	return WorkItem{Kind: ItemFlush, Marker: m}
}

// ShutdownItem returns the shutdown sentinel.
func ShutdownItem() WorkItem {
	return WorkItem{Kind: ItemShutdown}
}

// FlushMarker completes once every expected sink writer has arrived.
type FlushMarker struct {
	remaining int32
	done      chan struct{}
	once      sync.Once
}

// NewFlushMarker returns a marker expecting the given number of arrivals.
func NewFlushMarker(expected int) *FlushMarker {
	m := &FlushMarker{remaining: int32(expected), done: make(chan struct{})}
	if expected <= 0 {
		m.complete()
	}
	return m
}

// Arrive records one arrival. Extra arrivals are ignored.
func (m *FlushMarker) Arrive() {
	if atomic.AddInt32(&m.remaining, -1) == 0 {
		m.complete()
	}
}

// Remaining returns the number of outstanding arrivals.
func (m *FlushMarker) Remaining() int {
	n := atomic.LoadInt32(&m.remaining)
	if n < 0 {
		return 0
	}
	return int(n)
}

// Done is closed once all arrivals happened.
func (m *FlushMarker) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until completion or until ctx is done.
func (m *FlushMarker) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *FlushMarker) complete() {
	m.once.Do(func() { close(m.done) })
}
