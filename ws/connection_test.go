package ws

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/coregx/wsengine/proto"
)

// pipeConnections wires a server-role and a client-role Connection over a
// real loopback TCP socket pair, skipping Serve/Dial's accept loop. A real
// socket is used rather than net.Pipe because netConnStream's zero-byte
// abnormal-closure path (spec.md §4.2 step 3) depends on a closed TCP
// connection surfacing io.EOF to the peer's Read, which net.Pipe does not
// emulate (it errors both ends instead of half-closing one).
func pipeConnections(t *testing.T) (server, client *Connection) {
	t.Helper()
	lst, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = lst.Close() })

	accepted := make(chan net.Conn, 1)
	acceptErr := make(chan error, 1)
	go func() {
		conn, err := lst.Accept()
		if err != nil {
			acceptErr <- err
			return
		}
		accepted <- conn
	}()

	clientConn, err := net.Dial("tcp", lst.Addr().String())
	if err != nil {
		t.Fatal(err)
	}

	var serverConn net.Conn
	select {
	case serverConn = <-accepted:
	case err := <-acceptErr:
		t.Fatal(err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Accept")
	}

	clientFraming, err := proto.NewClient("example.com", "/chat")
	if err != nil {
		t.Fatal(err)
	}

	server = newConnection(NewNetConnStream(serverConn), proto.NewServer(), DefaultConfig())
	client = newConnection(NewNetConnStream(clientConn), clientFraming, DefaultConfig())
	server.Start()
	client.Start()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = client.Close(ctx, proto.CloseNormalClosure, "")
		server.Wait()
		client.Wait()
	})
	return server, client
}

func TestConnectionTextRoundTrip(t *testing.T) {
	server, client := pipeConnections(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.SendText(ctx, "hello"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	msgType, data, err := server.GetMessage(ctx)
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if msgType != TextMessage || string(data) != "hello" {
		t.Errorf("got %v %q, want TextMessage %q", msgType, data, "hello")
	}
}

func TestConnectionBinaryRoundTrip(t *testing.T) {
	server, client := pipeConnections(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload := []byte{0x00, 0x01, 0xFF, 0x42}
	if err := server.SendBinary(ctx, payload); err != nil {
		t.Fatalf("SendBinary: %v", err)
	}
	msgType, data, err := client.GetMessage(ctx)
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if msgType != BinaryMessage || string(data) != string(payload) {
		t.Errorf("got %v %x, want BinaryMessage %x", msgType, data, payload)
	}
}

func TestConnectionPingPong(t *testing.T) {
	_, client := pipeConnections(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx, []byte("ping")); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	// A second, independent ping must also be satisfied.
	if err := client.Ping(ctx, []byte("again")); err != nil {
		t.Fatalf("second Ping: %v", err)
	}
}

func TestConnectionCloseDeliversReasonToBothSides(t *testing.T) {
	server, client := pipeConnections(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Close(ctx, proto.CloseNormalClosure, "done"); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, _, err := server.GetMessage(ctx)
	if err == nil {
		t.Fatal("expected server.GetMessage to observe close after peer close")
	}
	var ce *CloseError
	if !errors.As(err, &ce) {
		t.Fatalf("server.GetMessage error = %v, want *CloseError", err)
	}
	if ce.Reason.Code != proto.CloseNormalClosure || ce.Reason.Reason != "done" {
		t.Errorf("server close reason = %+v, want Code=1000 Reason=done", ce.Reason)
	}

	r := client.closeReasonSnapshot()
	if r == nil || r.Code != proto.CloseNormalClosure || r.Reason != "done" {
		t.Errorf("client close reason = %+v, want Code=1000 Reason=done", r)
	}

	// A Close call on the server, whose reason the peer's close already
	// set, must observe that reason, not overwrite it.
	err = server.Close(ctx, proto.CloseInternalError, "ignored")
	if err == nil {
		t.Fatal("expected server.Close to report already-closing")
	}
	if !errors.As(err, &ce) || ce.Reason.Code != proto.CloseNormalClosure || ce.Reason.Reason != "done" {
		t.Errorf("server.Close error = %v, want CloseError with Code=1000 Reason=done", err)
	}
}

func TestConnectionConcurrentSendersBothDelivered(t *testing.T) {
	server, client := pipeConnections(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 2)
	go func() { done <- client.SendText(ctx, "first") }()
	go func() { done <- client.SendText(ctx, "second") }()

	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent SendText: %v", err)
		}
	}

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		_, data, err := server.GetMessage(ctx)
		if err != nil {
			t.Fatalf("GetMessage: %v", err)
		}
		got[string(data)] = true
	}
	if !got["first"] || !got["second"] {
		t.Errorf("got messages %v, want both \"first\" and \"second\" intact", got)
	}
}
