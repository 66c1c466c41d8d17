package fileservice

import (
	"encoding/binary"
	"reflect"
	"testing"

	"satreceiver/internal/config"
	"satreceiver/internal/frame"
)

func encodeAnnouncement(a Announcement) []byte {
	buf := []byte{config.RecordAnnouncement}

	hdr := make([]byte, 26)
	binary.BigEndian.PutUint32(hdr[0:4], a.CarouselID)
	binary.BigEndian.PutUint32(hdr[4:8], a.FileID)
	binary.BigEndian.PutUint32(hdr[8:12], a.TotalBlocks)
	binary.BigEndian.PutUint32(hdr[12:16], a.BlockSize)
	binary.BigEndian.PutUint64(hdr[16:24], a.FileLength)
	binary.BigEndian.PutUint16(hdr[24:26], uint16(len(a.Name)))
	buf = append(buf, hdr...)
	buf = append(buf, []byte(a.Name)...)

	sigLen := make([]byte, 2)
	binary.BigEndian.PutUint16(sigLen, uint16(len(a.Signature)))
	buf = append(buf, sigLen...)
	buf = append(buf, a.Signature...)

	buf = append(buf, a.FECCode)
	tail := make([]byte, 16)
	binary.BigEndian.PutUint32(tail[0:4], a.Systematic)
	binary.BigEndian.PutUint32(tail[4:8], a.Parity)
	binary.BigEndian.PutUint32(tail[8:12], a.N1)
	binary.BigEndian.PutUint32(tail[12:16], a.Seed)
	buf = append(buf, tail...)

	return buf
}

func TestParseAnnouncementRoundTrip(t *testing.T) {
	want := Announcement{
		CarouselID: 7, FileID: 42, TotalBlocks: 10, BlockSize: 1024,
		FileLength: 9000, Name: "bulletin.txt", Signature: []byte{0xDE, 0xAD, 0xBE, 0xEF},
		FECCode: config.FECCodeLDPC, Systematic: 8, Parity: 2, N1: 3, Seed: 99,
	}
	payload := encodeAnnouncement(want)

	ann, blk, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if blk != nil {
		t.Fatalf("expected nil block")
	}
	if !reflect.DeepEqual(*ann, want) {
		t.Fatalf("ann = %+v, want %+v", *ann, want)
	}
}

func TestParseBlockAndVerifyCRC(t *testing.T) {
	payload := []byte{0x42, 0x99}
	index := uint32(3)

	crcBuf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(crcBuf, index)
	copy(crcBuf[4:], payload)
	crc := frame.CRC16(crcBuf)

	buf := []byte{config.RecordBlock}
	hdr := make([]byte, 14)
	binary.BigEndian.PutUint32(hdr[0:4], 1)
	binary.BigEndian.PutUint32(hdr[4:8], 2)
	binary.BigEndian.PutUint32(hdr[8:12], index)
	binary.BigEndian.PutUint16(hdr[12:14], crc)
	buf = append(buf, hdr...)
	buf = append(buf, payload...)

	ann, blk, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ann != nil {
		t.Fatalf("expected nil announcement")
	}
	if !blk.VerifyCRC() {
		t.Fatalf("VerifyCRC() = false, want true")
	}
	if blk.Index != index {
		t.Fatalf("Index = %d, want %d", blk.Index, index)
	}
}

func TestParseRejectsUnknownDiscriminant(t *testing.T) {
	if _, _, err := Parse([]byte{0xFF}); err != ErrMalformedRecord {
		t.Fatalf("err = %v, want ErrMalformedRecord", err)
	}
}

func TestParseRejectsEmptyPayload(t *testing.T) {
	if _, _, err := Parse(nil); err != ErrMalformedRecord {
		t.Fatalf("err = %v, want ErrMalformedRecord", err)
	}
}
