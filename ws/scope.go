package ws

import (
	"context"

	"github.com/coregx/wsengine/proto"
)

// Start spawns the reader and writer tasks. Both are owned by this
// Connection; Wait blocks until they have both exited (spec.md §3
// "Lifecycle", §5 "Structured concurrency").
func (c *Connection) Start() {
	c.tasks.Add(2)
	go func() {
		defer c.tasks.Done()
		c.readerTask()
	}()
	go func() {
		defer c.tasks.Done()
		c.writerTask()
	}()
}

// Wait blocks until the reader and writer tasks have both exited, i.e.
// the connection has reached the CLOSED state (spec.md §4.6).
func (c *Connection) Wait() {
	c.tasks.Wait()
}

// runConnScope runs the reader, writer, and (server-side) a connection
// handler as a single structured-concurrency unit: if the handler
// returns, the scope closes the connection so the reader/writer don't
// outlive it (spec.md §5, §6 "Listener interface").
//
// This stands in for the original's per-connection `trio.open_nursery()`,
// which starts the reader, the writer, and the handler coroutine together.
// Only the handler's return triggers a Close here; when the reader or
// writer exits first, the handler is not interrupted and learns of the
// close from its next API call. runConnScope returns once the reader and
// writer have both exited.
func runConnScope(c *Connection, handler func(*Connection)) {
	c.Start()

	if handler != nil {
		handler(c)
		if c.closeReasonSnapshot() == nil {
			_ = c.Close(context.Background(), proto.CloseNormalClosure, "")
		}
	}

	c.Wait()
}
