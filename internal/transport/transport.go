// Package transport provides two frame sources behind one interface:
// a live UDP endpoint and a replay of a KISS byte-stuffed recorded
// capture. Both follow the same context-cancelled read loop and
// errors.Is(net.ErrClosed)-based shutdown idiom.
package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"golang.org/x/sys/unix"

	"satreceiver/internal/kiss"
	"satreceiver/internal/logging"
)

// ErrSourceClosed is returned by Next once the underlying transport
// has ended: replay EOF, or a UDPSource whose socket has been closed.
// Any other read error is returned unchanged.
var ErrSourceClosed = errors.New("transport: source closed")

// FrameSource yields one framed payload at a time. Next blocks until a
// frame is available, the source closes, or ctx is cancelled.
type FrameSource interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// UDPSource reads datagrams from a UDP endpoint; each datagram is
// exactly one link frame.
type UDPSource struct {
	conn   *net.UDPConn
	closed chan struct{}
	once   sync.Once
}

// NewUDPSource binds (or joins, for multicast addresses) host:port and
// tunes the kernel read buffer and SO_REUSEPORT for high-rate
// broadcast traffic.
func NewUDPSource(addr string) (*UDPSource, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	var conn *net.UDPConn
	if udpAddr.IP != nil && udpAddr.IP.IsMulticast() {
		conn, err = net.ListenMulticastUDP("udp", nil, udpAddr)
	} else {
		conn, err = net.ListenUDP("udp", udpAddr)
	}
	if err != nil {
		return nil, err
	}

	if err := conn.SetReadBuffer(64 << 20); err != nil {
		logging.Warn("failed to set UDP read buffer: %v", err)
	}

	if udpAddr.IP != nil && udpAddr.IP.IsMulticast() {
		if file, err := conn.File(); err == nil {
			fd := int(file.Fd())
			if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
				logging.Warn("failed to set SO_REUSEPORT: %v", err)
			}
			file.Close()
		}
	}

	return &UDPSource{conn: conn, closed: make(chan struct{})}, nil
}

// Next reads one datagram. It is not safe to call Next concurrently.
func (s *UDPSource) Next(ctx context.Context) ([]byte, error) {
	buf := make([]byte, 64*1024)

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, _, err := s.conn.ReadFromUDP(buf)
		done <- result{n, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			select {
			case <-s.closed:
				return nil, ErrSourceClosed
			default:
			}
			if errors.Is(r.err, net.ErrClosed) {
				return nil, ErrSourceClosed
			}
			return nil, r.err
		}
		out := make([]byte, r.n)
		copy(out, buf[:r.n])
		return out, nil
	case <-ctx.Done():
		s.Close()
		return nil, ctx.Err()
	}
}

// Close closes the underlying socket; safe to call more than once.
func (s *UDPSource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		err = s.conn.Close()
	})
	return err
}

// ReplaySource replays a recorded capture through the KISS deframer,
// yielding one frame per delimiter-closed, non-empty buffer.
type ReplaySource struct {
	r        io.ReadCloser
	deframer *kiss.Deframer
	pending  [][]byte
	readBuf  []byte
}

// NewReplaySource wraps a capture reader.
func NewReplaySource(r io.ReadCloser) *ReplaySource {
	return &ReplaySource{
		r:        r,
		deframer: kiss.NewDeframer(),
		readBuf:  make([]byte, 64*1024),
	}
}

// Next returns the next deframed capture frame, pulling and deframing
// more of the underlying stream as needed.
func (s *ReplaySource) Next(ctx context.Context) ([]byte, error) {
	for len(s.pending) == 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		n, err := s.r.Read(s.readBuf)
		if n > 0 {
			s.pending = append(s.pending, s.deframer.Push(s.readBuf[:n])...)
		}
		if err != nil {
			if len(s.pending) > 0 {
				break
			}
			if errors.Is(err, io.EOF) {
				return nil, ErrSourceClosed
			}
			return nil, err
		}
	}

	f := s.pending[0]
	s.pending = s.pending[1:]
	return f, nil
}

// Close closes the underlying reader.
func (s *ReplaySource) Close() error {
	return s.r.Close()
}
