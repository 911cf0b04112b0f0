//go:build !linux && !darwin

// File: ws/transport_stub.go
//
// Portable fallback for platforms without the golang.org/x/sys/unix socket
// options used by transport_unix.go.

package ws

import "net"

// tuneSocket is a no-op on platforms without direct socket option access.
func tuneSocket(net.Conn) {}
