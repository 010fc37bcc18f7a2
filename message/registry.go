package message

import (
	"fmt"
	"io"

	"github.com/opd-ai/msgcrypt/crypto"
	"github.com/opd-ai/msgcrypt/frame"
)

// kind is the registry entry for one message type.
type kind struct {
	minPayload int
	decode     func(payload []byte) (Message, error)
}

var registry = map[Type]kind{
	TypeText:            {minPayload: 1, decode: decodeText},
	TypeImage:           {minPayload: referenceSize, decode: decodeImage},
	TypeFile:            {minPayload: fileFixedSize, decode: decodeFile},
	TypeDeliveryReceipt: {minPayload: 1 + MessageIDSize, decode: decodeDeliveryReceipt},
}

// MinPayloadSize returns the smallest valid payload for t.
func MinPayloadSize(t Type) (int, bool) {
	k, ok := registry[t]
	return k.minPayload, ok
}

// Encode serializes m into a padded frame of at least minFrameLen bytes.
// Padding is drawn from r; a nil reader means crypto/rand.
func Encode(m Message, minFrameLen int, r io.Reader) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil message", ErrMalformedPayload)
	}
	payload, err := m.encodePayload()
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroBytes(payload)

	return frame.Encode(byte(m.Type()), payload, minFrameLen, r)
}

// Decode parses a padded frame back into a typed message. The returned
// message does not alias data, so the caller may wipe the frame afterwards.
func Decode(data []byte) (Message, error) {
	if len(data) < frame.MinFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", frame.ErrMalformedFrame, len(data))
	}

	t := Type(data[0])
	k, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("%w: tag 0x%02x", ErrUnknownType, data[0])
	}

	f, err := frame.DecodeFor(data, k.minPayload)
	if err != nil {
		return nil, err
	}
	return k.decode(f.Payload)
}
