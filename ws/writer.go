package ws

import (
	"context"

	"github.com/coregx/wsengine/proto"
)

// writerTask drains pending outbound bytes and sends them whenever
// data-pending is raised, then acknowledges via data-sent (spec.md §4.4).
func (c *Connection) writerTask() {
	ctx := context.Background()

	for c.writerRunning.Load() {
		if err := c.dataPending.Wait(ctx); err != nil {
			return
		}

		data := c.framing.DrainOutboundBytes()
		if len(data) > 0 {
			if err := c.transport.Send(data); err != nil {
				c.setCloseReason(newCloseReason(proto.CloseAbnormalClosure, err.Error()))
				c.closeTransport()
				return
			}
			c.bytesOut.Add(uint64(len(data)))
			c.framesOut.Add(1)
		}

		c.dataPending.Clear()
		c.dataSent.Set()
	}

	// The server performs the underlying TCP shutdown after acknowledging
	// a close handshake; the client waits for the server to close the TCP
	// connection, which its reader observes as a zero-byte read or, after
	// an abortive (zero SO_LINGER) close, a read error (spec.md §4.4
	// rationale).
	if c.IsServer() {
		c.closeTransport()
	}
}

// closeTransport is the transport-close procedure (spec.md §4.4): stop
// both tasks, wake the writer if it is suspended, close the transport
// (tolerating an already-dead stream), and raise closed.
func (c *Connection) closeTransport() {
	c.readerRunning.Store(false)
	c.writerRunning.Store(false)
	c.dataPending.Set()

	_ = c.transport.Close() // already-dead transport is not an error here

	c.closedSig.Set()
}
