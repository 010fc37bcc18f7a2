// Package limits provides centralized size limits for gateway messages.
// This ensures consistent validation across the framing, crypto and blob layers.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxTextLength is the gateway limit for a text message body in bytes (UTF-8).
	MaxTextLength = 3500

	// DefaultMinFrameLength is the default floor for a padded plaintext frame.
	DefaultMinFrameLength = 32

	// MaxPadding is the largest padding run a frame can carry. The final padding
	// byte stores the run length, so it has to fit in a single byte.
	MaxPadding = 255

	// MaxMinFrameLength is the largest frame floor that can always be reached
	// with a single padding run (tag + MaxPadding).
	MaxMinFrameLength = 1 + MaxPadding

	// EncryptionOverhead is the Poly1305 tag added by box.Seal and secretbox.Seal.
	EncryptionOverhead = 16 // golang.org/x/crypto/nacl/box.Overhead

	// MaxBlobSize is the largest attachment accepted for upload (50MB)
	MaxBlobSize = 50 * 1024 * 1024

	// MaxEncryptedBlob is the largest encrypted blob accepted for download.
	MaxEncryptedBlob = MaxBlobSize + EncryptionOverhead

	// MaxProcessingBuffer is the absolute maximum for a message envelope.
	// This prevents memory exhaustion from hostile input (1MB limit)
	MaxProcessingBuffer = 1024 * 1024
)

var (
	// ErrMessageEmpty indicates an empty message was provided
	ErrMessageEmpty = errors.New("empty message")

	// ErrMessageTooLarge indicates message exceeds maximum size
	ErrMessageTooLarge = errors.New("message too large")
)

// ValidateMessageSize validates a message against the specified maximum size.
// Returns an error with context including the actual and maximum sizes.
func ValidateMessageSize(message []byte, maxSize int) error {
	if len(message) == 0 {
		return ErrMessageEmpty
	}
	if len(message) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrMessageTooLarge, len(message), maxSize)
	}
	return nil
}

// ValidateText validates a text body against MaxTextLength.
func ValidateText(text string) error {
	if len(text) == 0 {
		return ErrMessageEmpty
	}
	if len(text) > MaxTextLength {
		return fmt.Errorf("%w: text size %d exceeds limit %d", ErrMessageTooLarge, len(text), MaxTextLength)
	}
	return nil
}

// ValidateBlob validates plaintext attachment data against MaxBlobSize.
func ValidateBlob(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if len(data) > MaxBlobSize {
		return fmt.Errorf("%w: blob size %d exceeds limit %d", ErrMessageTooLarge, len(data), MaxBlobSize)
	}
	return nil
}

// ValidateProcessingBuffer validates data against the absolute maximum (MaxProcessingBuffer).
// It should be used for all untrusted envelope input.
func ValidateProcessingBuffer(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if len(data) > MaxProcessingBuffer {
		return fmt.Errorf("%w: buffer size %d exceeds limit %d", ErrMessageTooLarge, len(data), MaxProcessingBuffer)
	}
	return nil
}
