package crypto

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewKeyStore(t *testing.T) {
	tempDir := t.TempDir()
	passphrase := []byte("test-passphrase-123")

	ks, err := NewKeyStore(tempDir, passphrase)
	if err != nil {
		t.Fatalf("Failed to create key store: %v", err)
	}
	defer ks.Close()

	salt, err := os.ReadFile(filepath.Join(tempDir, ".salt"))
	if err != nil {
		t.Fatalf("Failed to read salt: %v", err)
	}
	if len(salt) != SaltSize {
		t.Errorf("Salt size = %d, want %d", len(salt), SaltSize)
	}
	for _, b := range passphrase {
		if b != 0 {
			t.Fatal("passphrase was not wiped")
		}
	}

	if _, err := NewKeyStore(tempDir, nil); err == nil {
		t.Error("expected error for empty passphrase")
	}
}

func TestKeyStoreSaveLoad(t *testing.T) {
	tempDir := t.TempDir()
	ks, err := NewKeyStore(tempDir, []byte("passphrase"))
	if err != nil {
		t.Fatalf("Failed to create key store: %v", err)
	}
	defer ks.Close()

	kp, err := GenerateKeyPair(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := ks.Save("alice", kp); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(tempDir, "alice.key"))
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 2+NonceSize+KeySize+16 {
		t.Errorf("key file is %d bytes", len(raw))
	}

	loaded, err := ks.Load("alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Public != kp.Public || loaded.Private != kp.Private {
		t.Error("loaded key pair differs from saved key pair")
	}

	// A second store with the same passphrase reuses the salt.
	again, err := NewKeyStore(tempDir, []byte("passphrase"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := again.Load("alice"); err != nil {
		t.Errorf("reopened store could not load key: %v", err)
	}
}

func TestKeyStoreWrongPassphrase(t *testing.T) {
	tempDir := t.TempDir()
	ks, _ := NewKeyStore(tempDir, []byte("right"))
	kp, _ := GenerateKeyPair(nil)
	if err := ks.Save("bob", kp); err != nil {
		t.Fatal(err)
	}

	wrong, err := NewKeyStore(tempDir, []byte("wrong"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wrong.Load("bob"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestKeyStoreNames(t *testing.T) {
	ks, _ := NewKeyStore(t.TempDir(), []byte("p"))
	kp, _ := GenerateKeyPair(nil)

	for _, name := range []string{"", "../escape", "a/b", "with space"} {
		if err := ks.Save(name, kp); err == nil {
			t.Errorf("expected error for name %q", name)
		}
	}
	if _, err := ks.Load("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestKeyStoreDelete(t *testing.T) {
	ks, _ := NewKeyStore(t.TempDir(), []byte("p"))
	kp, _ := GenerateKeyPair(nil)
	if err := ks.Save("gone", kp); err != nil {
		t.Fatal(err)
	}
	if err := ks.Delete("gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := ks.Load("gone"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
	}
	if err := ks.Delete("gone"); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
}
