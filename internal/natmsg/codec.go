package natmsg

import (
	"encoding/binary"
	"fmt"
	"io"
)

// DefaultMaxFrameSize caps incoming frames at 64MB, comfortably above
// the attachment size limit plus JSON overhead.
const DefaultMaxFrameSize = 64 * 1024 * 1024

// WriteFrame writes one native-messaging frame: a uint32 little-endian
// byte length followed by the payload.
func WriteFrame(w io.Writer, payload []byte) error {
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one native-messaging frame. Frames larger than limit
// are rejected without consuming the payload; the connection is not
// recoverable after that and should be closed.
func ReadFrame(r io.Reader, limit uint32) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}

	size := binary.LittleEndian.Uint32(header[:])
	if size > limit {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit %d", size, limit)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("failed to read frame payload: %w", err)
	}
	return payload, nil
}
