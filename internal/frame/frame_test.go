package frame

import "testing"

func TestSerializeParseRoundTrip(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	raw := Serialize(0x42, payload)

	f, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.ServiceID != 0x42 {
		t.Fatalf("ServiceID = %#x, want 0x42", f.ServiceID)
	}
	if string(f.Payload) != string(payload) {
		t.Fatalf("Payload = %v, want %v", f.Payload, payload)
	}
}

func TestParseRejectsShortFrame(t *testing.T) {
	if _, err := Parse([]byte{0x01, 0x02}); err != ErrShortFrame {
		t.Fatalf("err = %v, want ErrShortFrame", err)
	}
}

func TestParseRejectsBadCRC(t *testing.T) {
	raw := Serialize(0x02, []byte("hello"))
	raw[len(raw)-1] ^= 0xFF

	if _, err := Parse(raw); err != ErrBadCRC {
		t.Fatalf("err = %v, want ErrBadCRC", err)
	}
}

func TestCRC16KnownVector(t *testing.T) {
	// "123456789" is the standard check string for CRC-16/CCITT-FALSE,
	// whose published residue is 0x29B1.
	got := CRC16([]byte("123456789"))
	if got != 0x29B1 {
		t.Fatalf("CRC16 = %#04x, want 0x29b1", got)
	}
}
