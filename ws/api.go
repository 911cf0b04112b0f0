package ws

import (
	"context"
	"time"

	"github.com/coregx/wsengine/proto"
)

// awaitSignal suspends until s is raised, the connection's transport is
// torn down, or ctx is done - the same escape hatches GetMessage offers,
// applied to every other suspend point (SendMessage, Ping) that would
// otherwise hang forever on an unbounded ctx if the writer's Send fails
// without ever raising s (closeTransport always raises closedSig).
func (c *Connection) awaitSignal(ctx context.Context, s *signal) error {
	s.mu.Lock()
	ch := s.ch
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-c.closedSig.ch:
		return c.closedErr()
	case <-ctx.Done():
		return ErrCancelled
	}
}

// SendMessage enqueues a data frame and suspends until the writer task has
// handed every byte it produced to the transport's Send (spec.md §4.1).
//
// Concurrent SendMessage calls are serialized by sendMu so that each
// caller holds the framing engine through one full writer cycle - the
// explicit mutex spec.md §9 recommends over relying on the raw
// data-sent signal alone.
func (c *Connection) SendMessage(ctx context.Context, msgType MessageType, payload []byte) error {
	if r := c.closeReasonSnapshot(); r != nil {
		return c.closedErr()
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if r := c.closeReasonSnapshot(); r != nil {
		return c.closedErr()
	}

	c.dataSent.Clear()
	if err := c.framing.EnqueueData(proto.MessageType(msgType), payload); err != nil {
		return err
	}
	c.dataPending.Set()

	if err := c.awaitSignal(ctx, c.dataSent); err != nil {
		return err
	}
	if r := c.closeReasonSnapshot(); r != nil {
		return c.closedErr()
	}
	return nil
}

// SendText is a convenience wrapper around SendMessage for text payloads.
func (c *Connection) SendText(ctx context.Context, text string) error {
	return c.SendMessage(ctx, TextMessage, []byte(text))
}

// SendBinary is a convenience wrapper around SendMessage for binary payloads.
func (c *Connection) SendBinary(ctx context.Context, data []byte) error {
	return c.SendMessage(ctx, BinaryMessage, data)
}

// GetMessage returns the next completed message in network order, or a
// CloseError once the connection has closed (spec.md §4.1).
func (c *Connection) GetMessage(ctx context.Context) (MessageType, []byte, error) {
	select {
	case m, ok := <-c.messages:
		if !ok {
			return 0, nil, c.closedErr()
		}
		if m.err != nil {
			return 0, nil, m.err
		}
		return m.msgType, m.data, nil
	case <-c.closedSig.ch:
		// A caller that starts waiting after drainMessageQueue's
		// non-blocking sentinel send already missed (no receiver was
		// ready yet) still observes the close here instead of hanging
		// until ctx's deadline.
		return 0, nil, c.closedErr()
	case <-ctx.Done():
		return 0, nil, ErrCancelled
	}
}

// Ping sends a ping frame and suspends until a matching pong has been
// observed (spec.md §4.1). The framing engine does not distinguish
// outstanding pings by payload, so a concurrent second ping's pong may
// satisfy this call too (spec.md §9 open question, preserved as-is).
func (c *Connection) Ping(ctx context.Context, payload []byte) error {
	if r := c.closeReasonSnapshot(); r != nil {
		return c.closedErr()
	}

	c.pongReceived.Clear()
	if err := c.framing.EnqueuePing(payload); err != nil {
		return err
	}
	c.dataPending.Set()

	if err := c.awaitSignal(ctx, c.pongReceived); err != nil {
		return err
	}
	c.pongReceived.Clear()
	return nil
}

// Close sends a close frame carrying code/reason and suspends until the
// transport has been shut down (spec.md §4.1). A second call observes the
// CloseReason already recorded by the first.
func (c *Connection) Close(ctx context.Context, code proto.CloseCode, reason string) error {
	if code == 0 {
		code = proto.CloseNormalClosure
	}

	assigned := c.setCloseReason(newCloseReason(code, reason))
	if !assigned {
		return c.closedErr()
	}

	if err := c.framing.InitiateClose(code, reason); err != nil {
		return err
	}
	c.dataPending.Set()

	if wait := c.cfg.closeWait(); wait > 0 {
		timer := time.AfterFunc(wait, c.closeTransport)
		defer timer.Stop()
	}

	if err := c.closedSig.Wait(ctx); err != nil {
		return ErrCancelled
	}
	return nil
}
