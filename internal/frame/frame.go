// Package frame implements the outer link-frame envelope: a 1-byte
// service tag, a variable payload, and a trailing CRC16 over the
// tagged payload.
package frame

import (
	"encoding/binary"
	"errors"

	"satreceiver/internal/config"
)

var (
	ErrShortFrame = errors.New("frame: shorter than minimum length")
	ErrBadCRC     = errors.New("frame: crc16 mismatch")
)

// Frame is the parsed outer envelope: a routing service id plus the
// inner payload with header and trailing CRC stripped.
type Frame struct {
	ServiceID byte
	Payload   []byte
}

// Parse validates and decodes a raw frame:
//  1. minimum length check (ErrShortFrame)
//  2. service id extraction from byte 0
//  3. CRC16 verification over service_id||payload (ErrBadCRC)
//
// Parse is pure: it never mutates b, and repeated calls on the same
// bytes are deterministic and idempotent.
func Parse(b []byte) (Frame, error) {
	if len(b) < config.LinkMinFrame {
		return Frame{}, ErrShortFrame
	}

	body := b[:len(b)-config.LinkTrailerLen]
	trailer := b[len(b)-config.LinkTrailerLen:]
	want := binary.BigEndian.Uint16(trailer)
	got := CRC16(body)
	if got != want {
		return Frame{}, ErrBadCRC
	}

	return Frame{
		ServiceID: body[0],
		Payload:   append([]byte(nil), body[config.LinkHeaderLen:]...),
	}, nil
}

// Serialize is the left inverse of Parse, used to construct captures
// and to exercise the round trip in tests.
func Serialize(serviceID byte, payload []byte) []byte {
	body := make([]byte, config.LinkHeaderLen+len(payload))
	body[0] = serviceID
	copy(body[config.LinkHeaderLen:], payload)

	crc := CRC16(body)
	out := make([]byte, len(body)+config.LinkTrailerLen)
	copy(out, body)
	binary.BigEndian.PutUint16(out[len(body):], crc)
	return out
}
