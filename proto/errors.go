package proto

import "errors"

var (
	errAcceptWithoutRequest = errors.New("proto: Accept called with no pending handshake request")
	errUnknownOpcode        = errors.New("proto: unknown or reserved opcode")
	errControlTooLarge      = errors.New("proto: control frame payload exceeds 125 bytes")
)
