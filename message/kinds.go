package message

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/opd-ai/msgcrypt/blob"
	"github.com/opd-ai/msgcrypt/crypto"
	"github.com/opd-ai/msgcrypt/limits"
)

// Text is a plain UTF-8 message. The body is the last field before padding,
// so it needs no length prefix.
type Text struct {
	Body string
}

// Type implements Message.
func (Text) Type() Type { return TypeText }

func (m Text) encodePayload() ([]byte, error) {
	if err := limits.ValidateText(m.Body); err != nil {
		return nil, err
	}
	if !utf8.ValidString(m.Body) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", ErrMalformedPayload)
	}
	return []byte(m.Body), nil
}

func decodeText(payload []byte) (Message, error) {
	if len(payload) == 0 || !utf8.Valid(payload) {
		return nil, fmt.Errorf("%w: text is empty or not valid UTF-8", ErrMalformedPayload)
	}
	if len(payload) > limits.MaxTextLength {
		return nil, fmt.Errorf("%w: text of %d bytes", ErrMalformedPayload, len(payload))
	}
	return Text{Body: string(payload)}, nil
}

// referenceSize is blob id (16) + key (32) + blob nonce (24).
const referenceSize = blob.IDSize + crypto.KeySize + crypto.NonceSize

// Image references an encrypted image blob. Only ID, Key and Nonce of the
// reference are transmitted.
type Image struct {
	Blob blob.Reference
}

// Type implements Message.
func (Image) Type() Type { return TypeImage }

func (m Image) encodePayload() ([]byte, error) {
	if m.Blob.ID.IsZero() {
		return nil, fmt.Errorf("%w: image has no blob id", ErrMalformedPayload)
	}
	return appendReference(make([]byte, 0, referenceSize), m.Blob), nil
}

func decodeImage(payload []byte) (Message, error) {
	if len(payload) != referenceSize {
		return nil, fmt.Errorf("%w: image payload is %d bytes, want %d", ErrMalformedPayload, len(payload), referenceSize)
	}
	ref := readReference(payload)
	if ref.ID.IsZero() {
		return nil, fmt.Errorf("%w: image has no blob id", ErrMalformedPayload)
	}
	return Image{Blob: ref}, nil
}

// fileFixedSize is the reference, the uint32 size and two uint16 length prefixes.
const fileFixedSize = referenceSize + 4 + 2 + 2

// File references an encrypted file blob together with its size, MIME type
// and original name.
type File struct {
	Blob blob.Reference
}

// Type implements Message.
func (File) Type() Type { return TypeFile }

func (m File) encodePayload() ([]byte, error) {
	if m.Blob.ID.IsZero() {
		return nil, fmt.Errorf("%w: file has no blob id", ErrMalformedPayload)
	}
	if m.Blob.MimeType == "" {
		return nil, fmt.Errorf("%w: file has no mime type", ErrMalformedPayload)
	}
	if len(m.Blob.MimeType) > 0xffff || len(m.Blob.FileName) > 0xffff {
		return nil, fmt.Errorf("%w: file metadata too long", ErrMalformedPayload)
	}

	out := make([]byte, 0, fileFixedSize+len(m.Blob.MimeType)+len(m.Blob.FileName))
	out = appendReference(out, m.Blob)
	out = binary.BigEndian.AppendUint32(out, m.Blob.Size)
	out = appendString(out, m.Blob.MimeType)
	out = appendString(out, m.Blob.FileName)
	return out, nil
}

func decodeFile(payload []byte) (Message, error) {
	if len(payload) < fileFixedSize {
		return nil, fmt.Errorf("%w: file payload is %d bytes, want at least %d", ErrMalformedPayload, len(payload), fileFixedSize)
	}
	ref := readReference(payload[:referenceSize])
	if ref.ID.IsZero() {
		return nil, fmt.Errorf("%w: file has no blob id", ErrMalformedPayload)
	}
	rest := payload[referenceSize:]
	ref.Size = binary.BigEndian.Uint32(rest[:4])
	rest = rest[4:]

	mimeType, rest, err := readString(rest)
	if err != nil {
		return nil, err
	}
	fileName, rest, err := readString(rest)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after file metadata", ErrMalformedPayload, len(rest))
	}
	if mimeType == "" {
		return nil, fmt.Errorf("%w: file has no mime type", ErrMalformedPayload)
	}

	ref.MimeType = mimeType
	ref.FileName = fileName
	return File{Blob: ref}, nil
}

// ReceiptStatus is the kind of acknowledgement a receipt carries.
type ReceiptStatus byte

const (
	// ReceiptReceived means the messages reached the recipient's device.
	ReceiptReceived ReceiptStatus = 0x01
	// ReceiptRead means the recipient opened the messages.
	ReceiptRead ReceiptStatus = 0x02
	// ReceiptUserAck means the recipient explicitly agreed.
	ReceiptUserAck ReceiptStatus = 0x03
	// ReceiptUserDecline means the recipient explicitly disagreed.
	ReceiptUserDecline ReceiptStatus = 0x04
)

func (s ReceiptStatus) String() string {
	switch s {
	case ReceiptReceived:
		return "received"
	case ReceiptRead:
		return "read"
	case ReceiptUserAck:
		return "user_ack"
	case ReceiptUserDecline:
		return "user_decline"
	default:
		return fmt.Sprintf("status(0x%02x)", byte(s))
	}
}

func (s ReceiptStatus) valid() bool {
	return s >= ReceiptReceived && s <= ReceiptUserDecline
}

// DeliveryReceipt acknowledges one or more messages.
type DeliveryReceipt struct {
	Status     ReceiptStatus
	MessageIDs []MessageID
}

// Type implements Message.
func (DeliveryReceipt) Type() Type { return TypeDeliveryReceipt }

func (m DeliveryReceipt) encodePayload() ([]byte, error) {
	if !m.Status.valid() {
		return nil, fmt.Errorf("%w: receipt status %s", ErrMalformedPayload, m.Status)
	}
	if len(m.MessageIDs) == 0 {
		return nil, fmt.Errorf("%w: receipt references no messages", ErrMalformedPayload)
	}
	out := make([]byte, 0, 1+len(m.MessageIDs)*MessageIDSize)
	out = append(out, byte(m.Status))
	for _, id := range m.MessageIDs {
		out = append(out, id[:]...)
	}
	return out, nil
}

func decodeDeliveryReceipt(payload []byte) (Message, error) {
	if len(payload) < 1+MessageIDSize {
		return nil, fmt.Errorf("%w: receipt payload is %d bytes", ErrMalformedPayload, len(payload))
	}
	status := ReceiptStatus(payload[0])
	if !status.valid() {
		return nil, fmt.Errorf("%w: receipt status %s", ErrMalformedPayload, status)
	}
	ids := payload[1:]
	if len(ids)%MessageIDSize != 0 {
		return nil, fmt.Errorf("%w: receipt has a partial message id", ErrMalformedPayload)
	}

	m := DeliveryReceipt{Status: status, MessageIDs: make([]MessageID, 0, len(ids)/MessageIDSize)}
	for len(ids) > 0 {
		var id MessageID
		copy(id[:], ids[:MessageIDSize])
		m.MessageIDs = append(m.MessageIDs, id)
		ids = ids[MessageIDSize:]
	}
	return m, nil
}

func appendReference(out []byte, ref blob.Reference) []byte {
	out = append(out, ref.ID[:]...)
	out = append(out, ref.Key[:]...)
	return append(out, ref.Nonce[:]...)
}

// readReference copies the fixed reference fields out of b, which must be
// referenceSize bytes.
func readReference(b []byte) blob.Reference {
	var ref blob.Reference
	copy(ref.ID[:], b[:blob.IDSize])
	b = b[blob.IDSize:]
	copy(ref.Key[:], b[:crypto.KeySize])
	b = b[crypto.KeySize:]
	copy(ref.Nonce[:], b[:crypto.NonceSize])
	return ref
}

func appendString(out []byte, s string) []byte {
	out = binary.BigEndian.AppendUint16(out, uint16(len(s)))
	return append(out, s...)
}

func readString(b []byte) (string, []byte, error) {
	if len(b) < 2 {
		return "", nil, fmt.Errorf("%w: missing length prefix", ErrMalformedPayload)
	}
	n := int(binary.BigEndian.Uint16(b[:2]))
	b = b[2:]
	if len(b) < n {
		return "", nil, fmt.Errorf("%w: string of %d bytes truncated to %d", ErrMalformedPayload, n, len(b))
	}
	s := b[:n]
	if !utf8.Valid(s) {
		return "", nil, fmt.Errorf("%w: string is not valid UTF-8", ErrMalformedPayload)
	}
	return string(s), b[n:], nil
}
