package crypto

import (
	"crypto/subtle"
	"errors"
	"runtime"
)

// SecureWipe erases the contents of a byte slice holding sensitive data.
// It returns an error if the byte slice is nil.
//
//go:noinline
func SecureWipe(data []byte) error {
	if data == nil {
		return errors.New("cannot wipe nil data")
	}

	zeros := make([]byte, len(data))
	subtle.ConstantTimeCopy(1, data, zeros)

	runtime.KeepAlive(&data)
	return nil
}

// ZeroBytes erases a byte slice, ignoring nil input. It is the form used
// with defer for frames, decrypted payloads and blob keys.
func ZeroBytes(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = SecureWipe(data)
}

// WipeKeyPair erases the private key in a KeyPair.
func WipeKeyPair(kp *KeyPair) error {
	if kp == nil {
		return errors.New("cannot wipe nil KeyPair")
	}
	return SecureWipe(kp.Private[:])
}

// Wipe erases the symmetric key.
func (k *SymmetricKey) Wipe() {
	if k != nil {
		ZeroBytes(k[:])
	}
}
