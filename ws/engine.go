// Package ws implements the per-connection WebSocket concurrency core: a
// reader task and a writer task that cooperate over a sans-I/O framing
// engine (package proto) and a duplex ByteStream to expose a
// message-oriented API to application code (spec.md §1-§5).
//
// The architecture - a reader/writer goroutine pair, a fixed-capacity
// inbound channel, and atomic liveness flags - is adapted from the
// teacher's protocol.WSConnection (recvLoop/sendLoop over inbox/outbox
// channels); the application-facing handshake (SendMessage suspending on
// a data-sent signal, Ping on a pong-received signal) is adapted from
// original_source/trio_websocket, which this spec distills.
package ws

import (
	"bytes"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/coregx/wsengine/control"
	"github.com/coregx/wsengine/proto"
)

// message is what flows over Connection.messages: a completed payload or
// a terminal error sentinel (spec.md §3, §4.5).
type message struct {
	msgType proto.MessageType
	data    []byte
	err     error
}

// Connection is one live WebSocket endpoint: one framing engine, one
// transport, and the reader/writer task pair that drive them (spec.md §3).
type Connection struct {
	id      uint64
	shortID string

	transport ByteStream
	framing   *proto.Engine
	cfg       Config

	// sendMu serializes the "mutate framing engine + await writer cycle"
	// critical section across concurrent SendMessage callers, per spec.md
	// §9's recommendation for safe concurrent senders. Ping and Close do
	// not take it.
	sendMu sync.Mutex

	closeMu     sync.Mutex
	closeReason *CloseReason

	binaryFrag bytes.Buffer
	textFrag   strings.Builder

	messages chan message

	dataPending  *signal
	dataSent     *signal
	pongReceived *signal
	closedSig    *signal

	readerRunning atomic.Bool
	writerRunning atomic.Bool

	tasks sync.WaitGroup

	// stats is a per-connection byte/frame counter registry, adapted from
	// control.MetricsRegistry and exposed read-only via Stats().
	stats     *control.MetricsRegistry
	framesIn  atomic.Uint64
	framesOut atomic.Uint64
	bytesIn   atomic.Uint64
	bytesOut  atomic.Uint64
}

// newConnection constructs a Connection over an already-handshaken (or
// about-to-handshake) framing engine and transport. It does not start the
// reader/writer tasks; callers (Serve, Dial, or a test) do that via Start.
func newConnection(transport ByteStream, framing *proto.Engine, cfg Config) *Connection {
	c := &Connection{
		id:           newConnID(),
		shortID:      newShortID(),
		transport:    transport,
		framing:      framing,
		cfg:          cfg,
		messages:     make(chan message, cfg.MessageChannelSize),
		dataPending:  newSignal(),
		dataSent:     newSignal(),
		pongReceived: newSignal(),
		closedSig:    newSignal(),
		stats:        control.NewMetricsRegistry(),
	}
	c.readerRunning.Store(true)
	c.writerRunning.Store(true)

	// A client has data ready to send immediately: the opening-handshake
	// request bytes were already queued by proto.NewClient (spec.md §6).
	if framing.Role() == proto.RoleClient {
		c.dataPending.Set()
	}
	return c
}

// ID is this connection's process-unique monotonic identity (spec.md §3).
func (c *Connection) ID() uint64 { return c.id }

// ShortID is a correlation-friendly string form of ID, for logging.
func (c *Connection) ShortID() string { return c.shortID }

// IsServer reports whether this connection plays the server role.
func (c *Connection) IsServer() bool { return c.framing.Role() == proto.RoleServer }

// IsClient reports whether this connection plays the client role.
func (c *Connection) IsClient() bool { return c.framing.Role() == proto.RoleClient }

// closeReasonSnapshot returns the current close reason, or nil if the
// connection is still open.
func (c *Connection) closeReasonSnapshot() *CloseReason {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.closeReason
}

// setCloseReason assigns the close reason exactly once: the first caller
// wins and everyone else observes the same CloseReason value (spec.md §3
// invariant). Returns true if this call performed the assignment.
func (c *Connection) setCloseReason(r CloseReason) (assigned bool) {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closeReason != nil {
		return false
	}
	c.closeReason = &r
	return true
}

// closedErr builds the CloseError every API operation returns once
// close-reason is set.
func (c *Connection) closedErr() error {
	return &CloseError{Reason: *c.closeReasonSnapshot()}
}
