package blob

import (
	"context"
	"fmt"

	"github.com/opd-ai/msgcrypt/crypto"
	"github.com/opd-ai/msgcrypt/limits"
)

// Uploader stores an encrypted blob and returns its server assigned ID.
type Uploader interface {
	UploadBlob(ctx context.Context, data []byte) (ID, error)
}

// Downloader returns the encrypted bytes stored under an ID.
type Downloader interface {
	DownloadBlob(ctx context.Context, id ID) ([]byte, error)
}

// Prepared is an encrypted blob ready for upload and the reference that will
// be embedded in the message once the upload has returned an ID.
type Prepared struct {
	Encrypted []byte
	Reference Reference
}

// Wipe zeroes the reference key and drops the ciphertext.
func (p *Prepared) Wipe() {
	p.Reference.Wipe()
	p.Encrypted = nil
}

// Prepare encrypts data under a fresh symmetric key. The sender and recipient
// keys are only length checked here: a message that could never be sealed is
// rejected before anything is uploaded.
func Prepare(engine *crypto.Engine, data, senderPrivateKey, recipientPublicKey []byte) (*Prepared, error) {
	if len(senderPrivateKey) != crypto.KeySize || len(recipientPublicKey) != crypto.KeySize {
		return nil, fmt.Errorf("%w: sender private %d bytes, recipient public %d bytes",
			crypto.ErrInvalidKeyLength, len(senderPrivateKey), len(recipientPublicKey))
	}
	if err := limits.ValidateBlob(data); err != nil {
		return nil, err
	}
	if engine == nil {
		engine = crypto.DefaultEngine
	}

	key, err := crypto.GenerateSymmetricKey(engine.Rand())
	if err != nil {
		return nil, err
	}

	nonce, sealed, err := engine.SealSymmetric(data, key[:])
	if err != nil {
		key.Wipe()
		return nil, err
	}

	crypto.NewPackageLogger("blob", "Prepare").
		WithField("plain_size", len(data)).
		WithField("encrypted_size", len(sealed)).
		Debug("Blob encrypted")

	return &Prepared{
		Encrypted: sealed,
		Reference: Reference{
			Key:   key,
			Nonce: nonce,
			Size:  uint32(len(data)),
		},
	}, nil
}

// Resolve opens downloaded blob bytes with the reference key.
func Resolve(engine *crypto.Engine, ref Reference, downloaded []byte) ([]byte, error) {
	if engine == nil {
		engine = crypto.DefaultEngine
	}
	if len(downloaded) > limits.MaxEncryptedBlob {
		return nil, fmt.Errorf("%w: %v", ErrBlobFetchFailed, limits.ErrMessageTooLarge)
	}
	return engine.OpenSymmetric(ref.Nonce[:], downloaded, ref.Key[:])
}

// ResolveFrom downloads the referenced blob and opens it. It performs exactly
// one download.
func ResolveFrom(ctx context.Context, engine *crypto.Engine, d Downloader, ref Reference) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: no blob transport configured", ErrBlobFetchFailed)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBlobFetchFailed, err)
	}

	downloaded, err := d.DownloadBlob(ctx, ref.ID)
	if err != nil {
		crypto.NewPackageLogger("blob", "ResolveFrom").
			WithField("blob_id", ref.ID.String()).
			WithError(err, "download").
			Warn("Blob download failed")
		return nil, fmt.Errorf("%w: %s: %w", ErrBlobFetchFailed, ref.ID, err)
	}

	return Resolve(engine, ref, downloaded)
}
