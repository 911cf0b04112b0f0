package ws

import "github.com/coregx/wsengine/proto"

// MessageType identifies whether a message is text or binary, re-exported
// from proto so application code need not import the framing-engine
// package directly.
type MessageType = proto.MessageType

const (
	BinaryMessage = proto.BinaryMessage
	TextMessage   = proto.TextMessage
)
