package crypto

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/nacl/box"

	"github.com/opd-ai/msgcrypt/limits"
)

// Envelope is a sealed message: the nonce and the authenticated box.
// The wire form is nonce||box.
type Envelope struct {
	Nonce Nonce
	Box   []byte
}

// NewEnvelope builds an envelope from separately transmitted parts, as the
// gateway delivers them.
func NewEnvelope(nonce, sealed []byte) (*Envelope, error) {
	n, err := NonceFromBytes(nonce)
	if err != nil {
		return nil, err
	}
	if err := limits.ValidateProcessingBuffer(sealed); err != nil {
		return nil, err
	}
	return &Envelope{Nonce: n, Box: append([]byte(nil), sealed...)}, nil
}

// ParseEnvelope splits nonce||box.
func ParseEnvelope(data []byte) (*Envelope, error) {
	if len(data) < NonceSize+box.Overhead {
		return nil, fmt.Errorf("%w: envelope is %d bytes, want at least %d",
			ErrInvalidNonceLength, len(data), NonceSize+box.Overhead)
	}
	return NewEnvelope(data[:NonceSize], data[NonceSize:])
}

// Bytes returns nonce||box.
func (e *Envelope) Bytes() []byte {
	out := make([]byte, 0, NonceSize+len(e.Box))
	out = append(out, e.Nonce[:]...)
	return append(out, e.Box...)
}

// NonceHex returns the lowercase hex nonce, as posted to the gateway.
func (e *Envelope) NonceHex() string {
	return hex.EncodeToString(e.Nonce[:])
}

// BoxHex returns the lowercase hex box, as posted to the gateway.
func (e *Envelope) BoxHex() string {
	return hex.EncodeToString(e.Box)
}

// EnvelopeFromHex parses the hex nonce and box fields of a gateway callback.
func EnvelopeFromHex(nonceHex, boxHex string) (*Envelope, error) {
	nonce, err := hex.DecodeString(nonceHex)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce is not hex", ErrInvalidNonceLength)
	}
	sealed, err := hex.DecodeString(boxHex)
	if err != nil {
		return nil, fmt.Errorf("%w: box is not hex", ErrAuthenticationFailed)
	}
	return NewEnvelope(nonce, sealed)
}
