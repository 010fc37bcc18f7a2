package crypto

import "errors"

var (
	// ErrInvalidKeyLength is returned when a key is not exactly KeySize bytes.
	// It is raised before any primitive sees the key.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrInvalidNonceLength is returned when a nonce is not exactly NonceSize bytes.
	ErrInvalidNonceLength = errors.New("invalid nonce length")

	// ErrAuthenticationFailed is returned when a box or secretbox does not open.
	// Tampering and a wrong key are deliberately reported the same way.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidIdentity is returned for identities that are not 8 characters of [A-Z0-9].
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrRandomSource is returned when the entropy source cannot fill a buffer.
	ErrRandomSource = errors.New("random source failure")
)
