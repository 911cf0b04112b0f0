package proto

import (
	"bytes"
	"net/http"
	"sync"

	"github.com/eapache/queue"
)

// Role identifies which side of the handshake an Engine plays.
type Role int

const (
	RoleServer Role = iota
	RoleClient
)

// handshakeState tracks progress of the opening handshake.
type handshakeState int

const (
	handshakePending handshakeState = iota
	handshakeAwaitingAccept               // server: request parsed, waiting for Accept()
	handshakeDone
)

// Engine is a sans-I/O RFC 6455 framing engine: it has no notion of a
// socket. Callers feed it inbound bytes and drain outbound bytes and
// events; all RFC 6455 framing concerns (masking, control frames,
// handshake) live here so the connection engine in package ws only has to
// deal with message-boundary semantics. Close codes received from the peer
// are passed through as-is; they are not validated.
//
// An Engine is not safe for unsynchronized concurrent use: spec.md §5
// confines all mutation to a single cooperative executor. This
// implementation adds an internal mutex regardless, since Go's reader and
// writer run as real goroutines rather than a cooperatively scheduled
// single thread.
type Engine struct {
	mu sync.Mutex

	role  Role
	host  string
	path  string

	state       handshakeState
	clientKey   string // client role: key sent, for verifying the accept hash
	pendingReq  *http.Request

	incoming bytes.Buffer // unconsumed inbound bytes
	outgoing bytes.Buffer // bytes ready to send

	events *queue.Queue

	closed        bool
	fragType      Opcode // OpText or OpBinary: type of in-flight fragmented message
	inFragment    bool
}

// NewServer creates a server-role Engine. No outbound bytes are queued
// until the opening handshake request arrives and Accept is called.
func NewServer() *Engine {
	return &Engine{role: RoleServer, events: queue.New()}
}

// NewClient creates a client-role Engine and immediately queues the
// opening-handshake request bytes, matching trio-websocket's behavior of
// pre-raising data-pending for clients (spec.md §6).
func NewClient(host, resource string) (*Engine, error) {
	e := &Engine{role: RoleClient, host: host, path: resource, events: queue.New()}
	req, key, err := buildClientRequest(host, resource)
	if err != nil {
		return nil, err
	}
	e.clientKey = key
	e.outgoing.Write(req)
	return e, nil
}

// Role reports whether this engine plays the client or server role.
func (e *Engine) Role() Role {
	return e.role
}

// FeedBytes appends inbound bytes and parses as much as is currently
// available: the opening handshake first, then zero or more complete
// WebSocket frames. Each fully parsed unit appends an Event to the
// internal queue for DrainEvents.
func (e *Engine) FeedBytes(data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.incoming.Write(data)

	if e.state != handshakeDone {
		if err := e.tryHandshake(); err != nil {
			return err
		}
		if e.state != handshakeDone {
			return nil // still waiting on more handshake bytes
		}
	}

	return e.drainFrames()
}

// tryHandshake attempts to parse a complete opening handshake out of the
// buffered inbound bytes.
func (e *Engine) tryHandshake() error {
	end := headerBlockEnd(e.incoming.Bytes())
	if end < 0 {
		return nil
	}
	block := make([]byte, end)
	copy(block, e.incoming.Bytes()[:end])

	switch e.role {
	case RoleServer:
		req, _, err := parseClientRequest(block)
		if err != nil {
			return err
		}
		e.incoming.Next(end)
		e.pendingReq = req
		e.state = handshakeAwaitingAccept
		e.events.Add(ConnectionRequested{Request: req})
		return nil
	default: // RoleClient
		if _, err := parseServerResponse(block, e.clientKey); err != nil {
			return err
		}
		e.incoming.Next(end)
		e.state = handshakeDone
		e.events.Add(ConnectionEstablished{})
		return nil
	}
}

// Accept completes a server-role handshake: it queues the 101 response
// and transitions the engine into frame-parsing mode. Any frame bytes
// that arrived after the request (pipelined by an eager client) are
// parsed immediately.
func (e *Engine) Accept() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pendingReq == nil {
		return errAcceptWithoutRequest
	}
	key, err := validateUpgradeRequest(e.pendingReq)
	if err != nil {
		return err
	}
	// Frames queued before the handshake completed go out after the 101
	// response.
	queued := append(buildAcceptResponse(key), e.outgoing.Bytes()...)
	e.outgoing.Reset()
	e.outgoing.Write(queued)
	e.state = handshakeDone
	e.pendingReq = nil
	return e.drainFrames()
}

// drainFrames parses as many complete frames as are currently buffered.
func (e *Engine) drainFrames() error {
	for {
		f, n, err := tryDecodeFrame(e.incoming.Bytes())
		if err != nil {
			return err
		}
		if f == nil {
			return nil
		}
		e.incoming.Next(n)
		if err := e.handleFrame(f); err != nil {
			return err
		}
	}
}

// handleFrame classifies one decoded frame and emits the matching event,
// per RFC 6455 §5.4-§5.5 (fragmentation and control frames).
func (e *Engine) handleFrame(f *decodedFrame) error {
	switch f.opcode {
	case OpText, OpBinary:
		e.fragType = f.opcode
		e.inFragment = !f.fin
		e.emitData(f.payload, f.fin)
		return nil

	case OpContinuation:
		e.emitData(f.payload, f.fin)
		if f.fin {
			e.inFragment = false
		}
		return nil

	case OpPing:
		e.queueFrame(OpPong, f.payload)
		e.events.Add(PingReceived{Payload: f.payload})
		return nil

	case OpPong:
		e.events.Add(PongReceived{Payload: f.payload})
		return nil

	case OpClose:
		code, reason := parseClosePayload(f.payload)
		if !e.closed {
			// Echo the close frame back (RFC 6455 §7.1.2 close handshake).
			e.queueFrame(OpClose, f.payload)
		}
		e.closed = true
		e.events.Add(ConnectionClosed{Code: code, Reason: reason})
		return nil

	default:
		return errUnknownOpcode
	}
}

func (e *Engine) emitData(payload []byte, finished bool) {
	if e.fragType == OpText {
		e.events.Add(TextReceived{Data: payload, MessageFinished: finished})
		return
	}
	e.events.Add(BytesReceived{Data: payload, MessageFinished: finished})
}

// queueFrame encodes and appends one frame to the outbound buffer.
// Server-role frames are never masked; client-role frames always are
// (RFC 6455 §5.1, §5.3).
func (e *Engine) queueFrame(opcode Opcode, payload []byte) error {
	encoded, err := encodeFrame(nil, opcode, payload, e.role == RoleClient)
	if err != nil {
		return err
	}
	e.outgoing.Write(encoded)
	return nil
}

// EnqueueData queues one data frame (unfragmented - this engine does not
// split large application writes across frames, matching the teacher's
// Write(), which documents the same limitation).
func (e *Engine) EnqueueData(msgType MessageType, payload []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queueFrame(Opcode(msgType), payload)
}

// EnqueuePing queues a Ping control frame. payload must be <= 125 bytes
// (RFC 6455 §5.5).
func (e *Engine) EnqueuePing(payload []byte) error {
	if len(payload) > 125 {
		return errControlTooLarge
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queueFrame(OpPing, payload)
}

// InitiateClose queues a Close frame carrying code and reason. Per RFC
// 6455 §7.1.1, an endpoint that receives a Close frame after already
// having sent its own does not send a second one; the `closed` flag set
// here tracks that.
func (e *Engine) InitiateClose(code CloseCode, reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	payload := encodeClosePayload(code, reason)
	if err := e.queueFrame(OpClose, payload); err != nil {
		return err
	}
	e.closed = true
	return nil
}

// DrainEvents pops and returns every event queued since the last call.
func (e *Engine) DrainEvents() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.events.Length()
	if n == 0 {
		return nil
	}
	out := make([]Event, n)
	for i := 0; i < n; i++ {
		out[i] = e.events.Remove().(Event)
	}
	return out
}

// DrainOutboundBytes returns and clears all bytes queued for send. A
// server-role engine returns nothing until Accept has queued the 101
// response, so that response is always the first thing it sends.
func (e *Engine) DrainOutboundBytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outgoing.Len() == 0 || (e.role == RoleServer && e.state != handshakeDone) {
		return nil
	}
	out := make([]byte, e.outgoing.Len())
	copy(out, e.outgoing.Bytes())
	e.outgoing.Reset()
	return out
}

// Closed reports whether a Close frame has been sent or received.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
