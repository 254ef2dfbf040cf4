package types

import (
	"context"
	"time"
)

// Capacitor is a bounded FIFO buffer between pipeline stages. Put blocks when full and Take
// blocks when empty.
type Capacitor[T any] interface {
	Put(ctx context.Context, item T) error
	Take(ctx context.Context) (T, error)

	// Poll waits up to timeout for an item. The boolean is false on timeout.
	Poll(timeout time.Duration) (T, bool)

	// TryTake returns an item only if one is immediately available.
	TryTake() (T, bool)

	Len() int
	Cap() int

	GetComponentMetadata() ComponentMetadata
	SetComponentMetadata(name string, id string)
}
