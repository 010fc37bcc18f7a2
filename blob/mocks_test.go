package blob

import (
	"context"
	"errors"
	"sync"
)

// mockTransport is an in-memory Uploader and Downloader for tests.
type mockTransport struct {
	mu        sync.Mutex
	blobs     map[ID][]byte
	nextID    ID
	uploads   int
	downloads int
	uploadErr error
	fetchErr  error
}

func newMockTransport(id ID) *mockTransport {
	return &mockTransport{blobs: make(map[ID][]byte), nextID: id}
}

func (m *mockTransport) UploadBlob(ctx context.Context, data []byte) (ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++
	if m.uploadErr != nil {
		return ID{}, m.uploadErr
	}
	m.blobs[m.nextID] = append([]byte(nil), data...)
	return m.nextID, nil
}

func (m *mockTransport) DownloadBlob(ctx context.Context, id ID) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	data, ok := m.blobs[id]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return append([]byte(nil), data...), nil
}
