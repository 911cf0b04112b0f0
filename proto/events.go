package proto

import "net/http"

// Event is a protocol-level occurrence produced by DrainEvents. Concrete
// types are ConnectionRequested, ConnectionEstablished, ConnectionClosed,
// BytesReceived, TextReceived, PingReceived and PongReceived - mirroring
// wsproto's event taxonomy (spec.md §6 glossary).
type Event interface {
	isEvent()
}

// ConnectionRequested is emitted once, server-role only, when a complete
// opening-handshake request has been buffered. The caller must call
// Accept before any data frames can flow.
type ConnectionRequested struct {
	Request *http.Request
}

// ConnectionEstablished is emitted once, client-role only, when the
// server's 101 response has been validated.
type ConnectionEstablished struct{}

// ConnectionClosed is emitted when a Close frame is received (or, for the
// half that initiated the close, after the peer's echoing Close frame
// arrives).
type ConnectionClosed struct {
	Code   CloseCode
	Reason string
}

// BytesReceived carries one binary-message frame's payload.
// MessageFinished reports whether this was the final (or only) fragment.
type BytesReceived struct {
	Data            []byte
	MessageFinished bool
}

// TextReceived is the text-message counterpart of BytesReceived.
type TextReceived struct {
	Data            []byte
	MessageFinished bool
}

// PingReceived is emitted for every received Ping frame. The engine has
// already queued the matching Pong for send; the caller need only flush.
type PingReceived struct {
	Payload []byte
}

// PongReceived is emitted for every received Pong frame.
type PongReceived struct {
	Payload []byte
}

func (ConnectionRequested) isEvent()   {}
func (ConnectionEstablished) isEvent() {}
func (ConnectionClosed) isEvent()      {}
func (BytesReceived) isEvent()         {}
func (TextReceived) isEvent()          {}
func (PingReceived) isEvent()          {}
func (PongReceived) isEvent()          {}
