package ws

import (
	"fmt"
	"runtime"

	"github.com/coregx/wsengine/proto"
)

// handleEvent processes one framing-engine event, called only by the
// reader task (spec.md §4.3). It is the sole writer of the inbound
// fragment accumulators, so no locking is needed there.
func (c *Connection) handleEvent(ev proto.Event) error {
	switch e := ev.(type) {
	case proto.ConnectionRequested:
		if err := c.framing.Accept(); err != nil {
			return err
		}
		c.dataPending.Set()

	case proto.ConnectionEstablished:
		// Client-role handshake completed; nothing to do but continue.

	case proto.ConnectionClosed:
		c.setCloseReason(newCloseReason(e.Code, e.Reason))
		c.drainMessageQueue()
		c.writerRunning.Store(false)
		c.dataPending.Set()

	case proto.BytesReceived:
		c.framesIn.Add(1)
		c.binaryFrag.Write(e.Data)
		if e.MessageFinished {
			payload := append([]byte(nil), c.binaryFrag.Bytes()...)
			c.binaryFrag.Reset()
			c.publishMessage(message{msgType: BinaryMessage, data: payload})
		}

	case proto.TextReceived:
		c.framesIn.Add(1)
		c.textFrag.Write(e.Data)
		if e.MessageFinished {
			payload := c.textFrag.String()
			c.textFrag.Reset()
			c.publishMessage(message{msgType: TextMessage, data: []byte(payload)})
		}

	case proto.PingReceived:
		c.framesIn.Add(1)
		c.dataPending.Set()

	case proto.PongReceived:
		c.framesIn.Add(1)
		c.pongReceived.Set()

	default:
		panic(fmt.Sprintf("ws: unknown framing event %T - engine/core version mismatch", ev))
	}
	return nil
}

// publishMessage delivers one completed message to whichever GetMessage
// caller is waiting, blocking until delivered or the connection starts
// closing underneath it.
func (c *Connection) publishMessage(m message) {
	select {
	case c.messages <- m:
	case <-c.closedSig.ch:
	}
}

// drainMessageQueue wakes every currently-suspended GetMessage caller with
// the terminal error sentinel, without buffering extra sentinels for
// future callers (spec.md §4.5). Future callers instead observe the
// close-reason directly via the API guard.
func (c *Connection) drainMessageQueue() {
	sentinel := message{err: c.closedErr()}
	for {
		select {
		case c.messages <- sentinel:
			runtime.Gosched()
		default:
			return
		}
	}
}
