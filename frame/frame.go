// Package frame builds and parses the padded plaintext frame that every
// message kind is sealed in:
//
//	[type tag (1)] [payload (n)] [random padding (N-1)] [N (1)]
//
// The padding run is never empty. Its last byte holds the run length N, so
// the decoder can strip it without knowing anything about the payload.
package frame

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/msgcrypt/limits"
)

var (
	// ErrMalformedFrame is returned when a buffer cannot be a valid frame.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrInvalidFrameLength is returned for a minimum length the padding
	// scheme cannot reach.
	ErrInvalidFrameLength = errors.New("invalid minimum frame length")
)

const (
	// TagSize is the length of the type tag.
	TagSize = 1
	// MinFrameSize is a tag plus a one byte padding run.
	MinFrameSize = TagSize + 1
)

// Frame is a decoded frame with its padding removed.
type Frame struct {
	Tag     byte
	Payload []byte
}

// PaddingLength returns the padding run length N for a payload of
// payloadLen bytes: max(1, minTotalLen - 1 - payloadLen).
func PaddingLength(payloadLen, minTotalLen int) int {
	n := minTotalLen - TagSize - payloadLen
	if n < 1 {
		return 1
	}
	return n
}

// Encode writes tag, payload and a random padding run so that the result is
// at least minTotalLen bytes long. A nil reader means crypto/rand.
func Encode(tag byte, payload []byte, minTotalLen int, r io.Reader) ([]byte, error) {
	if minTotalLen < 1 || minTotalLen > limits.MaxMinFrameLength {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidFrameLength, minTotalLen, limits.MaxMinFrameLength)
	}
	if r == nil {
		r = rand.Reader
	}

	n := PaddingLength(len(payload), minTotalLen)
	out := make([]byte, TagSize+len(payload)+n)
	out[0] = tag
	copy(out[TagSize:], payload)

	pad := out[TagSize+len(payload):]
	if _, err := io.ReadFull(r, pad[:n-1]); err != nil {
		return nil, fmt.Errorf("frame padding: %w", err)
	}
	pad[n-1] = byte(n)

	return out, nil
}

// Decode reads the tag, strips the padding and returns the payload. The
// payload aliases data.
func Decode(data []byte) (*Frame, error) {
	if len(data) < MinFrameSize {
		return nil, fmt.Errorf("%w: %d bytes, want at least %d", ErrMalformedFrame, len(data), MinFrameSize)
	}

	n := int(data[len(data)-1])
	if n < 1 || n > len(data)-TagSize {
		return nil, fmt.Errorf("%w: padding length %d does not fit %d byte frame", ErrMalformedFrame, n, len(data))
	}

	return &Frame{
		Tag:     data[0],
		Payload: data[TagSize : len(data)-n],
	}, nil
}

// DecodeFor is Decode with an additional check that the payload holds at
// least minPayloadLen bytes, the smallest payload of the frame's kind.
func DecodeFor(data []byte, minPayloadLen int) (*Frame, error) {
	f, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if len(f.Payload) < minPayloadLen {
		return nil, fmt.Errorf("%w: tag 0x%02x payload is %d bytes, want at least %d",
			ErrMalformedFrame, f.Tag, len(f.Payload), minPayloadLen)
	}
	return f, nil
}
