package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2Iterations is the number of iterations for passphrase key derivation.
	PBKDF2Iterations = 100000
	// KeyFileVersion is the current key file format version.
	KeyFileVersion = 1
	// SaltSize is the size of the per-store PBKDF2 salt.
	SaltSize = 32

	keyFileExt = ".key"
	saltFile   = ".salt"
)

// ErrKeyNotFound indicates no key pair is stored under the requested name.
var ErrKeyNotFound = errors.New("key not found")

var keyNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// KeyStore keeps private keys in a directory, each sealed with secretbox
// under a key derived from a passphrase. File format:
// [version:2][nonce:24][secretbox(private key)].
type KeyStore struct {
	engine *Engine
	key    SymmetricKey
	dir    string
}

// NewKeyStore opens or creates a key store in dir. The passphrase is wiped
// once the store key has been derived.
func NewKeyStore(dir string, passphrase []byte) (*KeyStore, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	ks := &KeyStore{engine: DefaultEngine, dir: dir}
	salt, err := ks.loadOrGenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize salt: %w", err)
	}

	derived := pbkdf2.Key(passphrase, salt, PBKDF2Iterations, KeySize, sha256.New)
	copy(ks.key[:], derived)
	ZeroBytes(derived)
	ZeroBytes(passphrase)

	NewLogger("NewKeyStore").WithField("dir", dir).Debug("Opened key store")
	return ks, nil
}

func (ks *KeyStore) loadOrGenerateSalt() ([]byte, error) {
	path := filepath.Join(ks.dir, saltFile)
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != SaltSize {
			return nil, fmt.Errorf("invalid salt file size: got %d, want %d", len(data), SaltSize)
		}
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read salt file: %w", err)
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	if err := os.WriteFile(path, salt, 0o600); err != nil {
		return nil, fmt.Errorf("failed to save salt: %w", err)
	}
	return salt, nil
}

func (ks *KeyStore) path(name string) (string, error) {
	if !keyNamePattern.MatchString(name) {
		return "", fmt.Errorf("invalid key name %q", name)
	}
	return filepath.Join(ks.dir, name+keyFileExt), nil
}

// Save seals the private key of kp under name, replacing any previous key.
func (ks *KeyStore) Save(name string, kp *KeyPair) error {
	path, err := ks.path(name)
	if err != nil {
		return err
	}
	nonce, sealed, err := ks.engine.SealSymmetric(kp.Private[:], ks.key[:])
	if err != nil {
		return err
	}

	out := make([]byte, 2+NonceSize+len(sealed))
	binary.BigEndian.PutUint16(out[0:2], KeyFileVersion)
	copy(out[2:], nonce[:])
	copy(out[2+NonceSize:], sealed)

	// Write to a temporary file and rename so a crash never leaves half a key.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename key file: %w", err)
	}

	NewLogger("KeyStore.Save").
		WithField("name", name).
		WithFields(SecureFieldHash(kp.Public[:], "public_key")).
		Info("Stored key pair")
	return nil
}

// Load opens the key stored under name. A wrong passphrase or a modified
// file fails with ErrAuthenticationFailed.
func (ks *KeyStore) Load(name string) (*KeyPair, error) {
	path, err := ks.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	if len(data) < 2+NonceSize {
		return nil, fmt.Errorf("%w: key file too short", ErrAuthenticationFailed)
	}
	if v := binary.BigEndian.Uint16(data[0:2]); v != KeyFileVersion {
		return nil, fmt.Errorf("unsupported key file version %d", v)
	}

	sk, err := ks.engine.OpenSymmetric(data[2:2+NonceSize], data[2+NonceSize:], ks.key[:])
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(sk)
	return KeyPairFromPrivate(sk)
}

// Delete overwrites and removes the key stored under name. Deleting a
// missing key is not an error.
func (ks *KeyStore) Delete(name string) error {
	path, err := ks.path(name)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat key file: %w", err)
	}
	if err := os.WriteFile(path, make([]byte, info.Size()), 0o600); err != nil {
		return os.Remove(path)
	}
	return os.Remove(path)
}

// Close wipes the store key. The store must not be used afterwards.
func (ks *KeyStore) Close() error {
	ks.key.Wipe()
	return nil
}
