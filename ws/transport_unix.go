//go:build linux || darwin

// File: ws/transport_unix.go
//
// Unix socket tuning applied during transport setup; its SO_LINGER setting
// shapes the transport-close procedure (spec.md §4.4). It uses the same linux/stub build-tag split the
// teacher uses for CPU affinity (affinity/affinity_linux.go,
// affinity/affinity_stub.go) applied here to socket options instead.

package ws

import (
	"net"

	"golang.org/x/sys/unix"
)

// tuneSocket sets TCP_NODELAY and an SO_LINGER of zero, so the
// transport-close procedure's final close is abortive: it doesn't stall on
// unsent data, discards any that remains, and the peer sees a connection
// reset rather than a FIN (spec.md §4.4, "tolerating a broken-stream error
// as already dead").
func tuneSocket(conn net.Conn) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tcpConn.SetNoDelay(true)

	raw, err := tcpConn.SyscallConn()
	if err != nil {
		return
	}
	_ = raw.Control(func(fd uintptr) {
		_ = unix.SetsockoptLinger(int(fd), unix.SOL_SOCKET, unix.SO_LINGER, &unix.Linger{
			Onoff:  1,
			Linger: 0,
		})
	})
}
