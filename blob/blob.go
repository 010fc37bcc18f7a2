package blob

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/opd-ai/msgcrypt/crypto"
)

var (
	// ErrBlobUploadFailed is returned when the transport could not store a blob.
	ErrBlobUploadFailed = errors.New("blob upload failed")

	// ErrBlobFetchFailed is returned when the transport could not return a blob.
	ErrBlobFetchFailed = errors.New("blob fetch failed")

	// ErrInvalidBlobID is returned for IDs that are not 16 bytes (32 hex characters).
	ErrInvalidBlobID = errors.New("invalid blob id")

	// ErrInvalidTransition is returned when an Outbound step runs out of order.
	ErrInvalidTransition = errors.New("invalid outbound state transition")
)

// IDSize is the length of a server assigned blob ID.
const IDSize = 16

// ID identifies an uploaded blob. It is rendered as 32 lowercase hex characters.
type ID [IDSize]byte

// ParseID parses a 32 character hex blob ID. Upper case digits are accepted;
// surrounding whitespace is not.
func ParseID(s string) (ID, error) {
	var id ID
	raw, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return id, fmt.Errorf("%w: %q is not hex", ErrInvalidBlobID, s)
	}
	if len(raw) != IDSize {
		return id, fmt.Errorf("%w: %q is %d bytes, want %d", ErrInvalidBlobID, s, len(raw), IDSize)
	}
	copy(id[:], raw)
	return id, nil
}

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool {
	return id == ID{}
}

// Reference is everything a recipient needs to fetch and open a blob. It is
// carried inside the sealed message frame, so the symmetric key is only ever
// exposed to whoever can open the outer box.
type Reference struct {
	ID    ID
	Key   crypto.SymmetricKey
	Nonce crypto.Nonce

	// File metadata; empty for images.
	Size     uint32
	MimeType string
	FileName string
}

// Wipe zeroes the symmetric key.
func (r *Reference) Wipe() {
	r.Key.Wipe()
}
