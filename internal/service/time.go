// Time-service decoding: a fixed-layout 32-bit seconds-since-epoch
// record, plus a richer tag-length-value descriptor stream (repeated
// desc_id/desc_len/data triples) some broadcasters use instead.
package service

import (
	"encoding/binary"
	"time"
)

// TimeEvent is emitted for every decoded time packet.
type TimeEvent struct {
	Instant  time.Time
	ServerID string // set only when a server-id descriptor (0x01) was present
}

// Time-service descriptor ids.
const (
	descServerID  byte = 0x01
	descTimestamp byte = 0x02
)

// ParseTime decodes a time-service payload. It supports both the
// plain 32-bit epoch-seconds record and the descriptor-style TLV
// stream (a 64-bit epoch descriptor plus an optional server-id
// string), truncating gracefully if a descriptor's length would
// overrun the remaining payload.
func ParseTime(payload []byte) (TimeEvent, bool) {
	if len(payload) == 4 {
		secs := binary.BigEndian.Uint32(payload)
		return TimeEvent{Instant: time.Unix(int64(secs), 0).UTC()}, true
	}

	var ev TimeEvent
	found := false
	for len(payload) > 2 {
		descID := payload[0]
		descLen := int(payload[1])
		if descLen > len(payload)-2 {
			break
		}
		data := payload[2 : 2+descLen]
		payload = payload[2+descLen:]

		switch {
		case descID == descServerID:
			ev.ServerID = string(data)
		case descID == descTimestamp && len(data) == 8:
			secs := binary.BigEndian.Uint64(data)
			ev.Instant = time.Unix(int64(secs), 0).UTC()
			found = true
		}
	}
	return ev, found
}
