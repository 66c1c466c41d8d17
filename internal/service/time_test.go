package service

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestParseTimeFixedWidthRecord(t *testing.T) {
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, 1_700_000_000)

	ev, ok := ParseTime(payload)
	if !ok {
		t.Fatalf("ParseTime returned ok=false")
	}
	want := time.Unix(1_700_000_000, 0).UTC()
	if !ev.Instant.Equal(want) {
		t.Fatalf("Instant = %v, want %v", ev.Instant, want)
	}
}

func TestParseTimeDescriptorStream(t *testing.T) {
	var payload []byte
	serverID := "GS-1"
	payload = append(payload, descServerID, byte(len(serverID)))
	payload = append(payload, serverID...)

	tsBuf := make([]byte, 8)
	binary.BigEndian.PutUint64(tsBuf, 1_700_000_500)
	payload = append(payload, descTimestamp, byte(len(tsBuf)))
	payload = append(payload, tsBuf...)

	ev, ok := ParseTime(payload)
	if !ok {
		t.Fatalf("ParseTime returned ok=false")
	}
	if ev.ServerID != serverID {
		t.Fatalf("ServerID = %q, want %q", ev.ServerID, serverID)
	}
	want := time.Unix(1_700_000_500, 0).UTC()
	if !ev.Instant.Equal(want) {
		t.Fatalf("Instant = %v, want %v", ev.Instant, want)
	}
}

func TestParseTimeTruncatedDescriptor(t *testing.T) {
	payload := []byte{descTimestamp, 8, 0x01, 0x02} // declares 8 bytes, only 2 follow
	_, ok := ParseTime(payload)
	if ok {
		t.Fatalf("ParseTime returned ok=true for truncated descriptor")
	}
}
