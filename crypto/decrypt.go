package crypto

import (
	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/nacl/secretbox"
)

// Open authenticates and decrypts env. It returns ErrAuthenticationFailed
// for any corruption of nonce, box or key; no plaintext is ever returned
// alongside an error.
func (e *Engine) Open(env *Envelope, senderPublicKey, recipientPrivateKey []byte) ([]byte, error) {
	pk, err := checkKey("sender public", senderPublicKey)
	if err != nil {
		return nil, err
	}
	sk, err := checkKey("recipient private", recipientPrivateKey)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(sk[:])

	if env == nil || len(env.Box) < box.Overhead {
		return nil, ErrAuthenticationFailed
	}

	nonce := env.Nonce
	decrypted, ok := box.Open(nil, env.Box, (*[NonceSize]byte)(&nonce), pk, sk)
	if !ok {
		NewLogger("Open").
			WithFields(SecureFieldHash(nonce[:], "nonce")).
			WithField("box_size", len(env.Box)).
			Debug("Box did not open")
		return nil, ErrAuthenticationFailed
	}

	return decrypted, nil
}

// OpenSymmetric authenticates and decrypts a secretbox.
func (e *Engine) OpenSymmetric(nonce, sealed, key []byte) ([]byte, error) {
	k, err := checkKey("symmetric", key)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(k[:])

	n, err := NonceFromBytes(nonce)
	if err != nil {
		return nil, err
	}

	if len(sealed) < secretbox.Overhead {
		return nil, ErrAuthenticationFailed
	}

	out, ok := secretbox.Open(nil, sealed, (*[NonceSize]byte)(&n), k)
	if !ok {
		return nil, ErrAuthenticationFailed
	}

	return out, nil
}
