package blobstore

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/msgcrypt/blob"
)

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[blob.ID][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[blob.ID][]byte)}
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, data []byte) (blob.ID, error) {
	if err := ctx.Err(); err != nil {
		return blob.ID{}, err
	}
	if err := validateBlob(data); err != nil {
		return blob.ID{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var id blob.ID
	for {
		var err error
		if id, err = newID(); err != nil {
			return blob.ID{}, err
		}
		if _, taken := s.blobs[id]; !taken {
			break
		}
	}
	s.blobs[id] = append([]byte(nil), data...)

	logrus.WithFields(logrus.Fields{
		"function": "MemoryStore.Put",
		"blob_id":  id.String(),
		"size":     len(data),
	}).Debug("Stored blob")

	return id, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id blob.ID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[id]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return append([]byte(nil), data...), nil
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
