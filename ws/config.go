package ws

import (
	"sync/atomic"
	"time"

	"github.com/coregx/wsengine/control"
)

// Config holds tunables shared by Serve and Dial, grounded on
// server/types.go's Config/DefaultConfig pattern.
type Config struct {
	// MessageChannelSize is the capacity of the inbound message channel.
	// Zero is the spec-mandated rendezvous (spec.md §9: "Zero-capacity
	// rendezvous for inbound messages"); a positive value decouples the
	// framing engine from a slow consumer at the cost of buffering.
	MessageChannelSize int

	// ReceiveBufferSize is the chunk size the reader task requests per
	// Receive call (spec.md §4.2 RECEIVE_BYTES).
	ReceiveBufferSize int

	// CloseWait bounds how long Close, in either role, waits for the
	// peer's close echo and the transport shutdown before forcing the
	// transport shut; zero means no bound (spec.md §9 open question: "Client teardown lacks an explicit
	// timeout"; here applied symmetrically since nothing in spec.md
	// prohibits bounding the server side too).
	CloseWait time.Duration

	// OnEvent, if set, is called for connection lifecycle events ("accept"
	// and "close" from Serve, "dial" from Dial). It is the seam cmd/wsecho uses to attach zerolog without
	// making this package depend on a logging library (spec.md out of
	// scope: "logging sink configuration").
	OnEvent func(event string, conn *Connection, detail string)

	// liveCloseWait, when non-nil, is kept in sync with a
	// control.ConfigStore's CloseWaitMillis tunable (see WithConfigStore) and
	// takes priority over CloseWait for connections built from this
	// Config, letting an operator push a new close-wait bound without
	// restarting the listener.
	liveCloseWait *atomic.Int64
}

// closeWait resolves the effective close-wait bound: the hot-reloadable
// value if a ConfigStore is attached, otherwise the static CloseWait.
func (c Config) closeWait() time.Duration {
	if c.liveCloseWait != nil {
		return time.Duration(c.liveCloseWait.Load())
	}
	return c.CloseWait
}

// DefaultConfig returns the zero-capacity, unbounded-wait configuration
// spec.md describes as the baseline behavior.
func DefaultConfig() Config {
	return Config{
		MessageChannelSize: 0,
		ReceiveBufferSize:  receiveBytes,
		CloseWait:          0,
	}
}

// Option customizes Serve/Dial construction (functional-options pattern,
// grounded on server/options.go's ServerOption).
type Option func(*Config)

// WithMessageChannelSize overrides the inbound message channel capacity.
func WithMessageChannelSize(n int) Option {
	return func(c *Config) { c.MessageChannelSize = n }
}

// WithReceiveBufferSize overrides the reader task's per-Receive chunk size.
func WithReceiveBufferSize(n int) Option {
	return func(c *Config) { c.ReceiveBufferSize = n }
}

// WithCloseWait bounds how long Close waits for the peer's close echo and
// the transport shutdown.
func WithCloseWait(d time.Duration) Option {
	return func(c *Config) { c.CloseWait = d }
}

// WithEventLogger attaches a connection lifecycle event hook.
func WithEventLogger(fn func(event string, conn *Connection, detail string)) Option {
	return func(c *Config) { c.OnEvent = fn }
}

// WithConfigStore attaches a control.ConfigStore as the live source of
// this listener's close-wait bound (SPEC_FULL.md §2, resolving spec.md
// §9's open question about the missing client/server teardown timeout):
// a CloseWaitMillis value pushed via store.SetCloseWaitMillis takes effect
// for every connection built from this Config, existing or future,
// without a restart.
func WithConfigStore(store *control.ConfigStore) Option {
	return func(c *Config) {
		live := &atomic.Int64{}
		live.Store(int64(c.CloseWait))
		store.OnReload(func(t control.ListenerTunables) {
			live.Store(int64(time.Duration(t.CloseWaitMillis) * time.Millisecond))
		})
		c.liveCloseWait = live
	}
}

func (c Config) logEvent(event string, conn *Connection, detail string) {
	if c.OnEvent != nil {
		c.OnEvent(event, conn, detail)
	}
}
