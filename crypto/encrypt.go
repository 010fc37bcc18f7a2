package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/opd-ai/msgcrypt/limits"
)

// Nonce is a 24-byte value used for encryption.
type Nonce [NonceSize]byte

// NonceFromBytes copies b into a Nonce, rejecting any other length.
func NonceFromBytes(b []byte) (Nonce, error) {
	var n Nonce
	if len(b) != NonceSize {
		return n, fmt.Errorf("%w: nonce is %d bytes, want %d", ErrInvalidNonceLength, len(b), NonceSize)
	}
	copy(n[:], b)
	return n, nil
}

// Engine seals and opens boxes. The only state it holds is its entropy
// source, so a single Engine may be shared by concurrent callers as long as
// the reader is safe for concurrent use (crypto/rand.Reader is).
type Engine struct {
	rand io.Reader
}

// NewEngine returns an Engine drawing nonces from r. A nil reader means crypto/rand.
func NewEngine(r io.Reader) *Engine {
	if r == nil {
		r = rand.Reader
	}
	return &Engine{rand: r}
}

// DefaultEngine draws from crypto/rand.
var DefaultEngine = NewEngine(nil)

// Rand returns the engine's entropy source.
func (e *Engine) Rand() io.Reader {
	return e.rand
}

// GenerateNonce creates a fresh nonce from the engine's source.
func (e *Engine) GenerateNonce() (Nonce, error) {
	var nonce Nonce
	if _, err := io.ReadFull(e.rand, nonce[:]); err != nil {
		return Nonce{}, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	return nonce, nil
}

// Seal encrypts plaintext for recipientPublicKey with a fresh nonce.
func (e *Engine) Seal(plaintext, recipientPublicKey, senderPrivateKey []byte) (*Envelope, error) {
	pk, err := checkKey("recipient public", recipientPublicKey)
	if err != nil {
		return nil, err
	}
	sk, err := checkKey("sender private", senderPrivateKey)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(sk[:])

	nonce, err := e.GenerateNonce()
	if err != nil {
		return nil, err
	}
	return sealBox(plaintext, nonce, pk, sk)
}

// SealWithNonce is Seal with a caller chosen nonce. It exists for fixed test
// vectors; production code must use Seal.
func SealWithNonce(plaintext []byte, nonce Nonce, recipientPublicKey, senderPrivateKey []byte) (*Envelope, error) {
	pk, err := checkKey("recipient public", recipientPublicKey)
	if err != nil {
		return nil, err
	}
	sk, err := checkKey("sender private", senderPrivateKey)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(sk[:])

	return sealBox(plaintext, nonce, pk, sk)
}

func sealBox(plaintext []byte, nonce Nonce, pk, sk *[KeySize]byte) (*Envelope, error) {
	if err := limits.ValidateProcessingBuffer(plaintext); err != nil {
		return nil, err
	}

	sealed := box.Seal(nil, plaintext, (*[NonceSize]byte)(&nonce), pk, sk)

	NewLogger("Seal").
		WithFields(SecureFieldHash(nonce[:], "nonce")).
		WithField("plaintext_size", len(plaintext)).
		WithField("box_size", len(sealed)).
		Debug("Sealed box")

	return &Envelope{Nonce: nonce, Box: sealed}, nil
}

// SealSymmetric encrypts plaintext under a symmetric key with a fresh nonce.
func (e *Engine) SealSymmetric(plaintext, key []byte) (Nonce, []byte, error) {
	k, err := checkKey("symmetric", key)
	if err != nil {
		return Nonce{}, nil, err
	}
	defer ZeroBytes(k[:])

	if err := limits.ValidateBlob(plaintext); err != nil {
		return Nonce{}, nil, err
	}

	nonce, err := e.GenerateNonce()
	if err != nil {
		return Nonce{}, nil, err
	}

	out := secretbox.Seal(nil, plaintext, (*[NonceSize]byte)(&nonce), k)

	NewLogger("SealSymmetric").
		WithField("plaintext_size", len(plaintext)).
		WithField("box_size", len(out)).
		Debug("Sealed secretbox")

	return nonce, out, nil
}
