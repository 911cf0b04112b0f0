package ws

import (
	"fmt"

	"github.com/coregx/wsengine/proto"
)

// CloseReason carries why a Connection closed. It is immutable once
// constructed (spec.md §6): code, symbolic name, optional reason string.
type CloseReason struct {
	Code   proto.CloseCode
	Name   string
	Reason string
}

// newCloseReason builds a CloseReason, deriving Name from Code the way
// the framing engine's close-code taxonomy does (spec.md §6).
func newCloseReason(code proto.CloseCode, reason string) CloseReason {
	return CloseReason{Code: code, Name: code.Name(), Reason: reason}
}

func (r CloseReason) String() string {
	return fmt.Sprintf("%s(%d): %s", r.Name, r.Code, r.Reason)
}
