package proto

import (
	"bytes"
	"testing"
)

// pump feeds everything one engine has queued for output into the other
// engine's input, simulating a lossless transport between the two.
func pump(t *testing.T, from, to *Engine) {
	t.Helper()
	if data := from.DrainOutboundBytes(); len(data) > 0 {
		if err := to.FeedBytes(data); err != nil {
			t.Fatalf("FeedBytes: %v", err)
		}
	}
}

func handshakeEngines(t *testing.T) (server, client *Engine) {
	t.Helper()
	server = NewServer()
	client, err := NewClient("example.com", "/chat")
	if err != nil {
		t.Fatal(err)
	}

	pump(t, client, server)
	evs := server.DrainEvents()
	if len(evs) != 1 {
		t.Fatalf("server events after request = %d, want 1", len(evs))
	}
	if _, ok := evs[0].(ConnectionRequested); !ok {
		t.Fatalf("server event = %T, want ConnectionRequested", evs[0])
	}
	if err := server.Accept(); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	pump(t, server, client)
	evs = client.DrainEvents()
	if len(evs) != 1 {
		t.Fatalf("client events after accept = %d, want 1", len(evs))
	}
	if _, ok := evs[0].(ConnectionEstablished); !ok {
		t.Fatalf("client event = %T, want ConnectionEstablished", evs[0])
	}
	return server, client
}

func TestEngineHandshake(t *testing.T) {
	handshakeEngines(t)
}

func TestEngineTextMessageRoundTrip(t *testing.T) {
	server, client := handshakeEngines(t)

	if err := client.EnqueueData(TextMessage, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	pump(t, client, server)

	evs := server.DrainEvents()
	if len(evs) != 1 {
		t.Fatalf("server events = %d, want 1", len(evs))
	}
	tr, ok := evs[0].(TextReceived)
	if !ok {
		t.Fatalf("event = %T, want TextReceived", evs[0])
	}
	if !tr.MessageFinished || string(tr.Data) != "hello" {
		t.Errorf("got %q finished=%v, want %q finished=true", tr.Data, tr.MessageFinished, "hello")
	}
}

func TestEngineFragmentedTextReassembly(t *testing.T) {
	server, _ := handshakeEngines(t)

	frames := []struct {
		opcode Opcode
		data   string
		fin    bool
	}{
		{OpText, "a", false},
		{OpContinuation, "bc", false},
		{OpContinuation, "d", true},
	}

	for _, f := range frames {
		encoded, err := encodeFrame(nil, f.opcode, []byte(f.data), true)
		if err != nil {
			t.Fatal(err)
		}
		// encodeFrame always sets FIN; clear it for non-final fragments.
		if !f.fin {
			encoded[0] &^= finBit
		}
		if err := server.FeedBytes(encoded); err != nil {
			t.Fatalf("FeedBytes: %v", err)
		}
	}
	evs := server.DrainEvents()
	if len(evs) != 3 {
		t.Fatalf("events = %d, want 3", len(evs))
	}
	var got string
	for i, ev := range evs {
		tr, ok := ev.(TextReceived)
		if !ok {
			t.Fatalf("event %d = %T, want TextReceived", i, ev)
		}
		got += string(tr.Data)
		wantFinished := i == len(evs)-1
		if tr.MessageFinished != wantFinished {
			t.Errorf("event %d MessageFinished = %v, want %v", i, tr.MessageFinished, wantFinished)
		}
	}
	if got != "abcd" {
		t.Errorf("reassembled = %q, want %q", got, "abcd")
	}
}

func TestEnginePingPong(t *testing.T) {
	server, client := handshakeEngines(t)

	if err := client.EnqueuePing([]byte("hi")); err != nil {
		t.Fatal(err)
	}
	pump(t, client, server)

	evs := server.DrainEvents()
	if len(evs) != 1 {
		t.Fatalf("server events = %d, want 1", len(evs))
	}
	pr, ok := evs[0].(PingReceived)
	if !ok || !bytes.Equal(pr.Payload, []byte("hi")) {
		t.Fatalf("event = %#v, want PingReceived{hi}", evs[0])
	}

	pump(t, server, client)
	evs = client.DrainEvents()
	if len(evs) != 1 {
		t.Fatalf("client events = %d, want 1", len(evs))
	}
	if _, ok := evs[0].(PongReceived); !ok {
		t.Fatalf("event = %T, want PongReceived", evs[0])
	}
}

func TestEngineCloseHandshakeDoesNotDoubleEcho(t *testing.T) {
	server, client := handshakeEngines(t)

	if err := client.InitiateClose(CloseNormalClosure, "bye"); err != nil {
		t.Fatal(err)
	}
	pump(t, client, server)

	// server received the client's close frame: it should echo exactly
	// one close frame back, and its own closed flag must now be set.
	if !server.Closed() {
		t.Fatal("server.Closed() = false after receiving close frame")
	}
	echoed := server.DrainOutboundBytes()
	if len(echoed) == 0 {
		t.Fatal("server did not echo a close frame")
	}

	pump2 := func(data []byte) {
		if err := client.FeedBytes(data); err != nil {
			t.Fatalf("client.FeedBytes: %v", err)
		}
	}
	pump2(echoed)

	// client already sent its own close frame, so it must not echo the
	// server's close back.
	if extra := client.DrainOutboundBytes(); len(extra) != 0 {
		t.Errorf("client queued %d bytes after receiving the close echo", len(extra))
	}

	evs := client.DrainEvents()
	if len(evs) != 1 {
		t.Fatalf("client events after echo = %d, want 1 (no double echo)", len(evs))
	}
	cc, ok := evs[0].(ConnectionClosed)
	if !ok || cc.Code != CloseNormalClosure {
		t.Fatalf("event = %#v, want ConnectionClosed{Code: 1000}", evs[0])
	}

	// server must not have produced a second close frame of its own.
	if extra := server.DrainOutboundBytes(); len(extra) != 0 {
		t.Errorf("server queued %d extra bytes after echoing close once", len(extra))
	}
}
