package ws

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/coregx/wsengine/proto"
)

// Handler is invoked once per accepted connection, as a third task in the
// same structured-concurrency scope as that connection's reader and
// writer (spec.md §6 "Listener interface").
type Handler func(*Connection)

// Serve binds addr (TCP, or TLS when tlsConfig is non-nil) and, for each
// accepted transport, builds a server-role framing engine and Connection,
// starts its reader/writer tasks, and runs handler alongside them in one
// scope (spec.md §6). Serve blocks until ctx is cancelled or the listener
// fails.
func Serve(ctx context.Context, addr string, tlsConfig *tls.Config, handler Handler, opts ...Option) error {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	var lst net.Listener
	var err error
	if tlsConfig == nil {
		lst, err = net.Listen("tcp", addr)
	} else {
		lst, err = tls.Listen("tcp", addr, tlsConfig)
	}
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		_ = lst.Close()
	}()

	for {
		netConn, err := lst.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		if tcpConn, ok := netConn.(*net.TCPConn); ok {
			tuneSocket(tcpConn)
		}

		conn := newConnection(NewNetConnStream(netConn), proto.NewServer(), cfg)
		cfg.logEvent("accept", conn, netConn.RemoteAddr().String())

		go func() {
			runConnScope(conn, handler)
			cfg.logEvent("close", conn, closeDetail(conn))
		}()
	}
}

func closeDetail(c *Connection) string {
	if r := c.closeReasonSnapshot(); r != nil {
		return r.String()
	}
	return ""
}
