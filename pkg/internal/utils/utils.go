package utils

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid"
)

var (
	entropyMu sync.Mutex
	entropy   io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// GenerateUniqueHash returns a random identifier for component metadata.
func GenerateUniqueHash() string {
	return uuid.NewString()
}

// NewULID returns a lexically sortable identifier for the given time. Identifiers generated for
// the same millisecond are strictly increasing.
func NewULID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
