package blobstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/opd-ai/msgcrypt/blob"
	"github.com/opd-ai/msgcrypt/interfaces"
	"github.com/opd-ai/msgcrypt/limits"
)

// ErrBlobNotFound indicates an unknown or expired blob ID. It matches
// interfaces.ErrNotFound.
var ErrBlobNotFound = fmt.Errorf("blob: %w", interfaces.ErrNotFound)

// Store keeps encrypted blobs by ID.
type Store interface {
	// Put stores data under a new random ID.
	Put(ctx context.Context, data []byte) (blob.ID, error)
	// Get returns a copy of the blob stored under id.
	Get(ctx context.Context, id blob.ID) ([]byte, error)
}

// newID allocates a blob ID from a random UUID.
func newID() (blob.ID, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return blob.ID{}, err
	}
	return blob.ID(u), nil
}

func validateBlob(data []byte) error {
	if len(data) == 0 {
		return limits.ErrMessageEmpty
	}
	if len(data) > limits.MaxEncryptedBlob {
		return fmt.Errorf("%w: blob of %d bytes exceeds %d", limits.ErrMessageTooLarge, len(data), limits.MaxEncryptedBlob)
	}
	return nil
}
