package chain

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex
)

// newReference mints a transaction reference for the simulated ledger.
func newReference() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	return "sim_" + ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}
