// Package crypto implements the box-crypto engine used by msgcrypt.
//
// It wraps NaCl authenticated encryption from golang.org/x/crypto: crypto_box
// (Curve25519, XSalsa20, Poly1305) between a sender and a recipient, and
// secretbox under a symmetric key for attachment blobs.
//
// # Core Types
//
//   - [KeyPair]: crypto_box key pair
//   - [Nonce]: 24-byte single use nonce
//   - [Envelope]: nonce and box, serialized as nonce||box
//   - [SymmetricKey]: fresh per-blob secretbox key
//   - [Identity]: 8 character gateway ID
//
// # Encryption and Decryption
//
// An [Engine] owns the entropy source used for nonces. Pass a deterministic
// reader in tests and nil (crypto/rand) everywhere else:
//
//	engine := crypto.NewEngine(nil)
//	env, err := engine.Seal(frame, recipientPK[:], sender.Private[:])
//	plain, err := engine.Open(env, sender.Public[:], recipient.Private[:])
//
// Keys and nonces are passed as byte slices and their lengths are checked
// before any primitive runs; a 16-byte key yields [ErrInvalidKeyLength].
// Every open failure is [ErrAuthenticationFailed] regardless of cause.
//
// # Secure Memory Handling
//
// Frames, decrypted payloads and symmetric keys should be wiped after use:
//
//	defer crypto.ZeroBytes(plain)
//	defer kp.Wipe()
//
// # Thread Safety
//
// Engine holds no mutable state besides its reader. With crypto/rand,
// concurrent Seal calls sharing one key pair each draw an independent nonce.
package crypto
