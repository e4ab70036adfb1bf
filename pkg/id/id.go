package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono = ulid.Monotonic(rand.Reader, 0)
)

// New returns a ULID string. IDs generated within the same millisecond stay
// lexicographically increasing, so event ids sort by creation time.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		panic(err)
	}
	return id.String()
}
