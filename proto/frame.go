package proto

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
)

// ErrFrameTooLarge is returned by encodeFrame for payloads this engine
// refuses to frame in a single send (spec.md leaves fragmentation of
// outbound application writes unimplemented, matching the teacher's
// single-frame Write()).
var ErrFrameTooLarge = errors.New("proto: frame payload too large")

// decodedFrame is one parsed WebSocket frame (RFC 6455 §5.2).
type decodedFrame struct {
	fin     bool
	opcode  Opcode
	payload []byte
}

// tryDecodeFrame attempts to parse a single frame from the front of data.
// It returns (nil, 0, nil) when data does not yet hold a complete frame -
// the caller is expected to feed more bytes and retry. This is the
// incremental counterpart of the teacher's blocking DecodeFrame
// (protocol/frame.go), needed because a sans-I/O engine cannot block on
// io.Reader.
func tryDecodeFrame(data []byte) (*decodedFrame, int, error) {
	if len(data) < 2 {
		return nil, 0, nil
	}

	fin := data[0]&finBit != 0
	opcode := Opcode(data[0] & 0x0F)
	masked := data[1]&maskBit != 0
	length := int(data[1] & 0x7F)
	offset := 2

	switch length {
	case 126:
		if len(data) < offset+2 {
			return nil, 0, nil
		}
		length = int(binary.BigEndian.Uint16(data[offset : offset+2]))
		offset += 2
	case 127:
		if len(data) < offset+8 {
			return nil, 0, nil
		}
		length = int(binary.BigEndian.Uint64(data[offset : offset+8]))
		offset += 8
	}

	var maskKey [4]byte
	if masked {
		if len(data) < offset+4 {
			return nil, 0, nil
		}
		copy(maskKey[:], data[offset:offset+4])
		offset += 4
	}

	if len(data) < offset+length {
		return nil, 0, nil
	}

	payload := make([]byte, length)
	copy(payload, data[offset:offset+length])
	if masked {
		unmaskInPlace(payload, maskKey)
	}
	offset += length

	return &decodedFrame{fin: fin, opcode: opcode, payload: payload}, offset, nil
}

// encodeFrame serializes one frame. Server-to-client frames are never
// masked; client-to-server frames always carry a fresh random mask key
// (RFC 6455 §5.1, §5.3).
func encodeFrame(dst []byte, opcode Opcode, payload []byte, mask bool) ([]byte, error) {
	if uint64(len(payload)) > 1<<63-1 {
		return nil, ErrFrameTooLarge
	}

	dst = append(dst, finBit|byte(opcode))

	var maskFlag byte
	if mask {
		maskFlag = maskBit
	}

	switch {
	case len(payload) <= 125:
		dst = append(dst, byte(len(payload))|maskFlag)
	case len(payload) <= 0xFFFF:
		dst = append(dst, 126|maskFlag)
		var ext [2]byte
		binary.BigEndian.PutUint16(ext[:], uint16(len(payload)))
		dst = append(dst, ext[:]...)
	default:
		dst = append(dst, 127|maskFlag)
		var ext [8]byte
		binary.BigEndian.PutUint64(ext[:], uint64(len(payload)))
		dst = append(dst, ext[:]...)
	}

	if !mask {
		return append(dst, payload...), nil
	}

	var maskKey [4]byte
	if _, err := rand.Read(maskKey[:]); err != nil {
		return nil, err
	}
	dst = append(dst, maskKey[:]...)

	masked := make([]byte, len(payload))
	copy(masked, payload)
	unmaskInPlace(masked, maskKey)
	return append(dst, masked...), nil
}

// unmaskInPlace XORs buf with the repeating 4-byte mask key. The same
// operation masks and unmasks (RFC 6455 §5.3).
func unmaskInPlace(buf []byte, key [4]byte) {
	for i := range buf {
		buf[i] ^= key[i%4]
	}
}
