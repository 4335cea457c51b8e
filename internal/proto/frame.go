package proto

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the length of the big-endian payload length prefix.
const HeaderSize = 4

var (
	// ErrDisconnected is returned when the peer closes the stream before a new frame starts.
	ErrDisconnected = errors.New("orderly disconnect")
	// ErrMalformedFrame is returned for truncated or oversized frames.
	ErrMalformedFrame = errors.New("malformed frame")
)

// ConnError wraps a transport failure observed while reading or writing a frame.
type ConnError struct {
	Op  string
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("%s frame: %v", e.Op, e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// Encode returns the wire form of payload: a 4-byte length followed by the payload bytes.
func Encode(payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[HeaderSize:], payload)
	return buf
}

// WriteFrame writes one frame to w with a single Write call.
func WriteFrame(w io.Writer, payload []byte) error {
	if _, err := w.Write(Encode(payload)); err != nil {
		return &ConnError{Op: "write", Err: err}
	}
	return nil
}

// ReadFrame reads exactly one frame from r without a size limit.
func ReadFrame(r io.Reader) ([]byte, error) {
	return ReadFrameLimit(r, 0)
}

// ReadFrameLimit reads one frame from r, blocking across partial reads until the
// whole payload has arrived. A limit of zero or less disables the size check.
func ReadFrameLimit(r io.Reader, limit int) ([]byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return nil, ErrDisconnected
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, fmt.Errorf("%w: short header", ErrMalformedFrame)
		default:
			return nil, &ConnError{Op: "read", Err: err}
		}
	}

	size := binary.BigEndian.Uint32(header[:])
	if limit > 0 && uint64(size) > uint64(limit) {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds limit %d", ErrMalformedFrame, size, limit)
	}
	if size == 0 {
		return []byte{}, nil
	}

	// Grow with the data actually received instead of trusting the prefix up front.
	var body bytes.Buffer
	n, err := io.CopyN(&body, r, int64(size))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: got %d of %d payload bytes", ErrMalformedFrame, n, size)
		}
		return nil, &ConnError{Op: "read", Err: err}
	}
	return body.Bytes(), nil
}
