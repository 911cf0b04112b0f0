package ws

import (
	"errors"
	"io"
	"net"
)

// receiveBytes is the chunk size the reader task asks the transport for
// per read, matching the original's RECEIVE_BYTES constant (spec.md §4.2).
const receiveBytes = 4096

// ErrTransportClosed is returned by ByteStream operations performed after
// Close, the way a closed net.Conn surfaces net.ErrClosed.
var ErrTransportClosed = errors.New("ws: transport closed")

// ByteStream is the duplex transport a Connection drives: receive-some(n)
// / send-all(bytes) plus a scoped close (spec.md §2). Only the reader task
// ever calls Receive; only the writer task ever calls Send (spec.md §3
// invariant).
type ByteStream interface {
	// Receive reads at most len(buf) bytes. A zero-length, nil-error
	// result signals the peer closed its write half (spec.md §4.2 step 3).
	Receive(buf []byte) (int, error)

	// Send writes all of p, blocking until every byte is handed to the
	// kernel or an error occurs.
	Send(p []byte) error

	// Close tears down the transport. Safe to call more than once.
	Close() error
}

// netConnStream adapts a net.Conn (plaintext or TLS) to ByteStream,
// exactly the collaborator spec.md §2 describes as external to the core.
type netConnStream struct {
	conn net.Conn
}

// NewNetConnStream wraps an established net.Conn (TCP or TLS) as a
// ByteStream for use by Serve/Dial or a caller constructing a Connection
// directly.
func NewNetConnStream(conn net.Conn) ByteStream {
	return &netConnStream{conn: conn}
}

func (s *netConnStream) Receive(buf []byte) (int, error) {
	n, err := s.conn.Read(buf)
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return 0, ErrTransportClosed
		}
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return n, err
	}
	return n, nil
}

func (s *netConnStream) Send(p []byte) error {
	_, err := s.conn.Write(p)
	if errors.Is(err, net.ErrClosed) {
		return ErrTransportClosed
	}
	return err
}

func (s *netConnStream) Close() error {
	err := s.conn.Close()
	if err != nil && errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
