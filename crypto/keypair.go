package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

const (
	// KeySize is the length of public, private and symmetric keys.
	KeySize = 32
	// NonceSize is the length of a box or secretbox nonce.
	NonceSize = 24
)

// SymmetricKey is a secretbox key used to encrypt one blob.
type SymmetricKey [KeySize]byte

// KeyPair represents a NaCl crypto_box key pair.
type KeyPair struct {
	Public  [KeySize]byte
	Private [KeySize]byte
}

// String prints the public half only.
func (kp *KeyPair) String() string {
	if kp == nil {
		return "KeyPair(nil)"
	}
	return fmt.Sprintf("KeyPair(public=%s)", hex.EncodeToString(kp.Public[:]))
}

// Wipe zeroes the private key.
func (kp *KeyPair) Wipe() {
	if kp != nil {
		ZeroBytes(kp.Private[:])
	}
}

// GenerateKeyPair creates a new random NaCl key pair. A nil reader means crypto/rand.
func GenerateKeyPair(r io.Reader) (*KeyPair, error) {
	if r == nil {
		r = rand.Reader
	}
	publicKey, privateKey, err := box.GenerateKey(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}

	kp := &KeyPair{
		Public:  *publicKey,
		Private: *privateKey,
	}
	ZeroBytes(privateKey[:])

	return kp, nil
}

// KeyPairFromPrivate rebuilds a key pair from a stored private key, deriving
// the public key with X25519.
func KeyPairFromPrivate(privateKey []byte) (*KeyPair, error) {
	sk, err := checkKey("private", privateKey)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(sk[:])
	if isZeroKey(*sk) {
		return nil, errors.New("invalid private key: all zeros")
	}

	pub, err := curve25519.X25519(sk[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}

	kp := &KeyPair{Private: *sk}
	copy(kp.Public[:], pub)
	return kp, nil
}

// GenerateSymmetricKey draws a fresh secretbox key. A nil reader means crypto/rand.
func GenerateSymmetricKey(r io.Reader) (SymmetricKey, error) {
	if r == nil {
		r = rand.Reader
	}
	var key SymmetricKey
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return SymmetricKey{}, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	return key, nil
}

// PublicKeyFromHex parses a 64 character hex public key.
func PublicKeyFromHex(s string) ([KeySize]byte, error) {
	return keyFromHex("public", s)
}

// PrivateKeyFromHex parses a 64 character hex private key.
func PrivateKeyFromHex(s string) ([KeySize]byte, error) {
	return keyFromHex("private", s)
}

func keyFromHex(name, s string) ([KeySize]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return [KeySize]byte{}, fmt.Errorf("%w: %s key is not hex", ErrInvalidKeyLength, name)
	}
	defer ZeroBytes(raw)

	k, err := checkKey(name, raw)
	if err != nil {
		return [KeySize]byte{}, err
	}
	return *k, nil
}

// checkKey copies a caller supplied key into a fixed array, rejecting any
// other length.
func checkKey(name string, key []byte) (*[KeySize]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: %s key is %d bytes, want %d", ErrInvalidKeyLength, name, len(key), KeySize)
	}
	var k [KeySize]byte
	copy(k[:], key)
	return &k, nil
}

// isZeroKey checks if a key consists of all zeros.
func isZeroKey(key [KeySize]byte) bool {
	for _, b := range key {
		if b != 0 {
			return false
		}
	}
	return true
}
