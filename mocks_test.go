package msgcrypt

import (
	"context"
	"crypto/rand"
	"errors"
	"sync"

	"github.com/opd-ai/msgcrypt/blob"
	"github.com/opd-ai/msgcrypt/crypto"
	"github.com/opd-ai/msgcrypt/interfaces"
)

// mockBlobs is an in-memory blob transport that counts calls.
type mockBlobs struct {
	mu        sync.Mutex
	blobs     map[blob.ID][]byte
	uploads   int
	downloads int
	uploadErr error
	fixedID   *blob.ID
}

func newMockBlobs() *mockBlobs {
	return &mockBlobs{blobs: make(map[blob.ID][]byte)}
}

func (m *mockBlobs) UploadBlob(ctx context.Context, data []byte) (blob.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++
	if m.uploadErr != nil {
		return blob.ID{}, m.uploadErr
	}
	var id blob.ID
	if m.fixedID != nil {
		id = *m.fixedID
	} else if _, err := rand.Read(id[:]); err != nil {
		return blob.ID{}, err
	}
	m.blobs[id] = append([]byte(nil), data...)
	return id, nil
}

func (m *mockBlobs) DownloadBlob(ctx context.Context, id blob.ID) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads++
	data, ok := m.blobs[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *mockBlobs) stored(id blob.ID) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.blobs[id]...)
}

func (m *mockBlobs) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads, m.downloads
}

// mockGateway records sent envelopes and serves a fixed key directory.
type mockGateway struct {
	mu      sync.Mutex
	keys    map[crypto.Identity][32]byte
	sent    []*crypto.Envelope
	sendErr error
}

func (g *mockGateway) SendE2E(ctx context.Context, from, to crypto.Identity, env *crypto.Envelope) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return "", g.sendErr
	}
	g.sent = append(g.sent, env)
	return "0102030405060708", nil
}

func (g *mockGateway) LookupPublicKey(ctx context.Context, id crypto.Identity) ([32]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key, ok := g.keys[id]
	if !ok {
		return [32]byte{}, interfaces.ErrNotFound
	}
	return key, nil
}

var errRejected = errors.New("rejected")
