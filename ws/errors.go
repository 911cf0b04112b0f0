package ws

import (
	"errors"
	"fmt"
)

// ErrCancelled is surfaced from a suspended API call (SendMessage,
// GetMessage, Ping, Close) when its enclosing scope is cancelled rather
// than the connection closing normally (spec.md §5, "Cancellation").
var ErrCancelled = errors.New("ws: operation cancelled")

// CloseError is returned by every application API operation once a
// Connection's close-reason has been set (spec.md §4.1, §7). It wraps the
// CloseReason so callers can inspect Code/Name/Reason via errors.As.
type CloseError struct {
	Reason CloseReason
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("ws: connection closed: %s", e.Reason)
}

// Is reports CloseError equality by reason so that repeated close-reason
// assignment (spec.md invariant: "every subsequent API call raises
// connection-closed carrying that same reason object") compares cleanly
// with errors.Is.
func (e *CloseError) Is(target error) bool {
	other, ok := target.(*CloseError)
	if !ok {
		return false
	}
	return e.Reason == other.Reason
}
