package blobstore

import (
	"context"

	"github.com/opd-ai/msgcrypt/blob"
	"github.com/opd-ai/msgcrypt/interfaces"
)

// LocalTransport serves blob uploads and downloads straight from a Store.
type LocalTransport struct {
	store Store
}

var _ interfaces.IBlobTransport = (*LocalTransport)(nil)

// NewLocalTransport wraps store. A nil store means a new MemoryStore.
func NewLocalTransport(store Store) *LocalTransport {
	if store == nil {
		store = NewMemoryStore()
	}
	return &LocalTransport{store: store}
}

// UploadBlob implements interfaces.IBlobTransport.
func (t *LocalTransport) UploadBlob(ctx context.Context, data []byte) (blob.ID, error) {
	return t.store.Put(ctx, data)
}

// DownloadBlob implements interfaces.IBlobTransport.
func (t *LocalTransport) DownloadBlob(ctx context.Context, id blob.ID) ([]byte, error) {
	return t.store.Get(ctx, id)
}
