package proto

import "testing"

// TestAcceptKeyFor checks the canonical RFC 6455 §1.3 example key pair.
func TestAcceptKeyFor(t *testing.T) {
	const clientKey = "dGhlIHNhbXBsZSBub25jZQ=="
	const want = "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got := acceptKeyFor(clientKey); got != want {
		t.Errorf("acceptKeyFor(%q) = %q, want %q", clientKey, got, want)
	}
}

func TestValidateUpgradeRequest(t *testing.T) {
	raw, key, err := buildClientRequest("example.com", "/chat")
	if err != nil {
		t.Fatal(err)
	}
	if key == "" {
		t.Fatal("expected non-empty Sec-WebSocket-Key")
	}
	req, parsedKey, err := parseClientRequest(raw)
	if err != nil {
		t.Fatal(err)
	}
	if parsedKey != key {
		t.Errorf("parsed key = %q, want %q", parsedKey, key)
	}
	if req.URL.Path != "/chat" {
		t.Errorf("path = %q, want /chat", req.URL.Path)
	}
}

func TestClientServerHandshakeRoundTrip(t *testing.T) {
	clientReq, key, err := buildClientRequest("example.com", "/chat")
	if err != nil {
		t.Fatal(err)
	}

	end := headerBlockEnd(clientReq)
	if end != len(clientReq) {
		t.Fatalf("headerBlockEnd = %d, want %d", end, len(clientReq))
	}

	_, serverKey, err := parseClientRequest(clientReq)
	if err != nil {
		t.Fatalf("parseClientRequest: %v", err)
	}
	if serverKey != key {
		t.Fatalf("server observed key %q, want %q", serverKey, key)
	}

	resp := buildAcceptResponse(serverKey)
	if _, err := parseServerResponse(resp, key); err != nil {
		t.Fatalf("parseServerResponse: %v", err)
	}
}

func TestParseServerResponseRejectsBadAccept(t *testing.T) {
	resp := buildAcceptResponse("some-other-key")
	if _, err := parseServerResponse(resp, "wrong-key"); err == nil {
		t.Fatal("expected Sec-WebSocket-Accept mismatch error")
	}
}
