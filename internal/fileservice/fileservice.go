// Package fileservice decodes file-service payload records:
// announcements (file descriptors broadcast ahead of and during
// transmission) and blocks (fragments of a file). Both use a
// fixed-offset binary.BigEndian layout with a trailing
// variable-length name and opaque signature on announcements.
package fileservice

import (
	"encoding/binary"
	"errors"

	"satreceiver/internal/config"
	"satreceiver/internal/frame"
)

// ErrMalformedRecord is returned when a record's discriminant, length,
// or nested length fields don't add up.
var ErrMalformedRecord = errors.New("fileservice: malformed record")

// Announcement is a file descriptor broadcast ahead of and during a
// file's transmission.
type Announcement struct {
	CarouselID  uint32
	FileID      uint32
	TotalBlocks uint32
	BlockSize   uint32
	FileLength  uint64
	Name        string
	Signature   []byte
	FECCode     uint8
	Systematic  uint32
	Parity      uint32
	N1          uint32
	Seed        uint32
}

// Key identifies a (carousel, file) pair.
func (a Announcement) Key() Key {
	return Key{CarouselID: a.CarouselID, FileID: a.FileID}
}

// Key is the (carousel id, file id) tuple that identifies one file
// assembly.
type Key struct {
	CarouselID uint32
	FileID     uint32
}

// Block is a single fragment of a file.
type Block struct {
	CarouselID uint32
	FileID     uint32
	Index      uint32
	Payload    []byte
	CRC        uint16
}

// Key identifies which assembly this block belongs to.
func (b Block) Key() Key {
	return Key{CarouselID: b.CarouselID, FileID: b.FileID}
}

// VerifyCRC checks the inner CRC16 over index||payload. Both the
// link-frame trailer and this inner block CRC share the frame
// package's CRC-16/CCITT-FALSE table.
func (b Block) VerifyCRC() bool {
	buf := make([]byte, 4+len(b.Payload))
	binary.BigEndian.PutUint32(buf, b.Index)
	copy(buf[4:], b.Payload)
	return frame.CRC16(buf) == b.CRC
}

// Parse decodes a file-service payload into either an Announcement or
// a Block, discriminated by the leading byte.
func Parse(payload []byte) (ann *Announcement, blk *Block, err error) {
	if len(payload) < 1 {
		return nil, nil, ErrMalformedRecord
	}
	switch payload[0] {
	case config.RecordAnnouncement:
		a, err := parseAnnouncement(payload[1:])
		if err != nil {
			return nil, nil, err
		}
		return a, nil, nil
	case config.RecordBlock:
		b, err := parseBlock(payload[1:])
		if err != nil {
			return nil, nil, err
		}
		return nil, b, nil
	default:
		return nil, nil, ErrMalformedRecord
	}
}

func parseAnnouncement(b []byte) (*Announcement, error) {
	if len(b) < config.AnnouncementFixedLen {
		return nil, ErrMalformedRecord
	}

	a := &Announcement{
		CarouselID:  binary.BigEndian.Uint32(b[0:4]),
		FileID:      binary.BigEndian.Uint32(b[4:8]),
		TotalBlocks: binary.BigEndian.Uint32(b[8:12]),
		BlockSize:   binary.BigEndian.Uint32(b[12:16]),
		FileLength:  binary.BigEndian.Uint64(b[16:24]),
	}
	nameLen := int(binary.BigEndian.Uint16(b[24:26]))
	rest := b[26:]
	if len(rest) < nameLen+2 {
		return nil, ErrMalformedRecord
	}
	a.Name = string(rest[:nameLen])
	rest = rest[nameLen:]

	sigLen := int(binary.BigEndian.Uint16(rest[:2]))
	rest = rest[2:]
	if len(rest) < sigLen+1+4+4+4+4 {
		return nil, ErrMalformedRecord
	}
	a.Signature = append([]byte(nil), rest[:sigLen]...)
	rest = rest[sigLen:]

	a.FECCode = rest[0]
	rest = rest[1:]
	a.Systematic = binary.BigEndian.Uint32(rest[0:4])
	a.Parity = binary.BigEndian.Uint32(rest[4:8])
	a.N1 = binary.BigEndian.Uint32(rest[8:12])
	a.Seed = binary.BigEndian.Uint32(rest[12:16])

	return a, nil
}

func parseBlock(b []byte) (*Block, error) {
	if len(b) < config.BlockHeaderLen {
		return nil, ErrMalformedRecord
	}

	blk := &Block{
		CarouselID: binary.BigEndian.Uint32(b[0:4]),
		FileID:     binary.BigEndian.Uint32(b[4:8]),
		Index:      binary.BigEndian.Uint32(b[8:12]),
		CRC:        binary.BigEndian.Uint16(b[12:14]),
		Payload:    append([]byte(nil), b[14:]...),
	}
	return blk, nil
}
