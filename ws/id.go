package ws

import (
	"sync/atomic"

	"github.com/lithammer/shortuuid/v4"
)

// nextConnID is the process-wide monotonic connection-id counter
// (spec.md §3, §9: "a simple atomic"). It mirrors the original's
// itertools.count().
var nextConnID atomic.Uint64

// newConnID draws the next identity. Unique within a process for the
// connection's entire lifetime.
func newConnID() uint64 {
	return nextConnID.Add(1)
}

// newShortID mints a short, correlation-friendly string id for logs,
// the way tzrikka-omdient/tzrikka-timpani tag requests with a shortuuid
// rather than a raw integer.
func newShortID() string {
	return shortuuid.New()
}
