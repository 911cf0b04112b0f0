package ws

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	"github.com/coregx/wsengine/proto"
)

// Dial opens a TCP (or TLS, when tlsConfig is non-nil) connection to
// host:port, performs the client-role opening handshake for resource, and
// starts the reader/writer tasks, returning the live Connection
// (spec.md §6 "Dialer interface").
func Dial(ctx context.Context, host string, port int, resource string, tlsConfig *tls.Config, opts ...Option) (*Connection, error) {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	var d net.Dialer
	netConn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	if tlsConfig != nil {
		tlsConn := tls.Client(netConn, tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = netConn.Close()
			return nil, err
		}
		netConn = tlsConn
	} else if tcpConn, ok := netConn.(*net.TCPConn); ok {
		tuneSocket(tcpConn)
	}

	hostHeader := host
	if port != 80 && port != 443 {
		hostHeader = addr
	}

	framing, err := proto.NewClient(hostHeader, resource)
	if err != nil {
		_ = netConn.Close()
		return nil, err
	}

	conn := newConnection(NewNetConnStream(netConn), framing, cfg)
	cfg.logEvent("dial", conn, addr)
	conn.Start()
	return conn, nil
}
