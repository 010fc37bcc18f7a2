// Package message defines the closed set of message kinds carried inside a
// sealed frame, and how each kind encodes its payload.
//
// Example:
//
//	frameBytes, err := message.Encode(message.Text{Body: "hi"}, 100, nil)
//	msg, err := message.Decode(frameBytes)
//	if text, ok := msg.(message.Text); ok {
//	    fmt.Println(text.Body)
//	}
package message

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/msgcrypt/frame"
)

var (
	// ErrMalformedPayload is returned when a payload is too short or invalid
	// for its kind.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrUnknownType is returned for an unregistered type tag. It wraps
	// frame.ErrMalformedFrame.
	ErrUnknownType = fmt.Errorf("unknown message type: %w", frame.ErrMalformedFrame)
)

// Type is the one byte tag at the start of every frame.
type Type byte

const (
	// TypeText is a UTF-8 text message.
	TypeText Type = 0x01
	// TypeImage references an encrypted image blob.
	TypeImage Type = 0x02
	// TypeFile references an encrypted file blob with metadata.
	TypeFile Type = 0x17
	// TypeDeliveryReceipt acknowledges one or more earlier messages.
	TypeDeliveryReceipt Type = 0x80
)

func (t Type) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeImage:
		return "image"
	case TypeFile:
		return "file"
	case TypeDeliveryReceipt:
		return "delivery_receipt"
	default:
		return fmt.Sprintf("type(0x%02x)", byte(t))
	}
}

// HasAttachment reports whether messages of this type reference a blob.
func (t Type) HasAttachment() bool {
	return t == TypeImage || t == TypeFile
}

// Message is implemented only by the kinds in this package: Text, Image,
// File and DeliveryReceipt.
type Message interface {
	Type() Type
	encodePayload() ([]byte, error)
}

// MessageIDSize is the length of a gateway message ID.
const MessageIDSize = 8

// MessageID identifies a message for delivery receipts.
type MessageID [MessageIDSize]byte

// NewMessageID draws a random message ID. A nil reader means crypto/rand.
func NewMessageID(r io.Reader) (MessageID, error) {
	if r == nil {
		r = rand.Reader
	}
	var id MessageID
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return MessageID{}, err
	}
	return id, nil
}

// ParseMessageID parses a 16 character hex message ID.
func ParseMessageID(s string) (MessageID, error) {
	var id MessageID
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != MessageIDSize {
		return id, fmt.Errorf("%w: message id %q", ErrMalformedPayload, s)
	}
	copy(id[:], raw)
	return id, nil
}

func (id MessageID) String() string {
	return hex.EncodeToString(id[:])
}
