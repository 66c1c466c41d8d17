// Package kiss implements byte-stuffed replay-capture framing:
// delimiter 0xC0 closes a frame, escape 0xDB permits delimiter/escape
// bytes inside a payload (0xDB 0xDC -> 0xC0, 0xDB 0xDD -> 0xDB). Empty
// frames (delimiter-delimiter) are ignored.
//
// The deframer is a byte-at-a-time state machine over one pdu buffer
// accumulator and one "in escape" flag; it does not implement the
// full KISS protocol's leading command-nibble convention, only the
// delimiter/escape framing.
package kiss

import "satreceiver/internal/config"

// Deframer incrementally decodes a byte-stuffed stream into frames.
type Deframer struct {
	pdu      []byte
	escaping bool
}

// NewDeframer returns a ready-to-use Deframer.
func NewDeframer() *Deframer {
	return &Deframer{}
}

// Push feeds a chunk of raw bytes into the deframer and returns the
// frames it closes, in stream order.
func (d *Deframer) Push(data []byte) [][]byte {
	var frames [][]byte

	for _, c := range data {
		switch {
		case c == config.KissFEND:
			if len(d.pdu) > 0 {
				frames = append(frames, d.pdu)
			}
			d.pdu = nil
			d.escaping = false
		case d.escaping:
			switch c {
			case config.KissTFEND:
				d.pdu = append(d.pdu, config.KissFEND)
			case config.KissTFESC:
				d.pdu = append(d.pdu, config.KissFESC)
			}
			d.escaping = false
		case c == config.KissFESC:
			d.escaping = true
		default:
			d.pdu = append(d.pdu, c)
		}
	}

	return frames
}

// Encode byte-stuffs payload and wraps it in leading/trailing
// delimiters. Push is its left inverse: pushing Encode(payload) yields
// payload back as one frame (an empty payload yields no frame).
func Encode(payload []byte) []byte {
	out := []byte{config.KissFEND}
	for _, c := range payload {
		switch c {
		case config.KissFEND:
			out = append(out, config.KissFESC, config.KissTFEND)
		case config.KissFESC:
			out = append(out, config.KissFESC, config.KissTFESC)
		default:
			out = append(out, c)
		}
	}
	out = append(out, config.KissFEND)
	return out
}
