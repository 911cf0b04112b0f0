package proto

import "testing"

func TestClosePayloadRoundTrip(t *testing.T) {
	payload := encodeClosePayload(CloseGoingAway, "bye")
	code, reason := parseClosePayload(payload)
	if code != CloseGoingAway || reason != "bye" {
		t.Errorf("parseClosePayload = %v, %q; want %v, %q", code, reason, CloseGoingAway, "bye")
	}
}

func TestParseClosePayloadEmpty(t *testing.T) {
	code, reason := parseClosePayload(nil)
	if code != CloseNoStatusReceived || reason != "" {
		t.Errorf("parseClosePayload(nil) = %v, %q; want CloseNoStatusReceived, \"\"", code, reason)
	}
}
