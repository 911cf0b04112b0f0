package ws

import (
	"errors"

	"github.com/coregx/wsengine/proto"
)

// readerTask continuously reads network data, feeds it to the framing
// engine, and dispatches the events it produces (spec.md §4.2). It never
// writes to the transport.
func (c *Connection) readerTask() {
	buf := make([]byte, c.cfg.ReceiveBufferSize)

	for c.readerRunning.Load() {
		n, err := c.transport.Receive(buf)
		if err != nil {
			if errors.Is(err, ErrTransportClosed) {
				// Someone else (writer, Close) already tore the transport
				// down; exit silently (spec.md §4.2 step 2).
				return
			}
			// Any other transport error - a raw ECONNRESET, a read
			// timeout, whatever the OS hands back - is as fatal to the
			// connection as a zero-byte EOF read: abnormal closure
			// (spec.md §4.2 step 3, §1 "fail safely when the transport
			// dies mid-stream").
			if !c.framing.Closed() {
				c.setCloseReason(newCloseReason(proto.CloseAbnormalClosure, err.Error()))
			}
			c.closeTransport()
			return
		}

		if n == 0 {
			// Peer closed its write half before any WebSocket close
			// handshake completed: abnormal closure (spec.md §4.2 step 3).
			if !c.framing.Closed() {
				c.setCloseReason(newCloseReason(proto.CloseAbnormalClosure, "TCP connection aborted"))
			}
			c.closeTransport()
			return
		}

		c.bytesIn.Add(uint64(n))

		if err := c.framing.FeedBytes(buf[:n]); err != nil {
			c.setCloseReason(newCloseReason(proto.CloseProtocolError, err.Error()))
			c.closeTransport()
			return
		}

		// Handling an event can queue more (Accept parses frames that were
		// pipelined behind the handshake request), so drain until empty.
		for evs := c.framing.DrainEvents(); len(evs) > 0; evs = c.framing.DrainEvents() {
			for _, ev := range evs {
				if err := c.handleEvent(ev); err != nil {
					c.setCloseReason(newCloseReason(proto.CloseProtocolError, err.Error()))
					c.closeTransport()
					return
				}
			}
		}
	}
}
