package blob

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/msgcrypt/crypto"
)

func TestOutboundHappyPath(t *testing.T) {
	sender, recipient := keys(t)
	id := ID{0xab, 0xc1, 0x23}
	transport := newMockTransport(id)
	ctx := context.Background()

	out := NewOutbound([]byte("ten bytes!"))
	assert.Equal(t, StateComposed, out.State())

	_, err := out.Reference()
	assert.ErrorIs(t, err, ErrInvalidTransition, "no reference before upload")

	require.NoError(t, out.Encrypt(nil, sender.Private[:], recipient.Public[:]))
	assert.Equal(t, StateBlobEncrypted, out.State())
	assert.NotEmpty(t, out.Encrypted())

	gotID, err := out.Upload(ctx, transport)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, StateBlobUploaded, out.State())

	ref, err := out.Reference()
	require.NoError(t, err)
	assert.Equal(t, id, ref.ID)

	require.NoError(t, out.MarkFrameBuilt())
	require.NoError(t, out.MarkSealed(ctx))
	require.NoError(t, out.MarkSent())
	assert.Equal(t, StateSent, out.State())
	assert.True(t, out.State().Terminal())
	assert.Equal(t, 1, transport.uploads)

	// The recipient's copy of the reference still opens the blob.
	plain, err := ResolveFrom(ctx, nil, transport, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("ten bytes!"), plain)
}

func TestOutboundTransitionsAreOneWay(t *testing.T) {
	sender, recipient := keys(t)
	ctx := context.Background()
	out := NewOutbound([]byte("data"))

	// Skipping steps is rejected without changing state.
	assert.ErrorIs(t, out.MarkFrameBuilt(), ErrInvalidTransition)
	assert.ErrorIs(t, out.MarkSealed(ctx), ErrInvalidTransition)
	assert.ErrorIs(t, out.MarkSent(), ErrInvalidTransition)
	_, err := out.Upload(ctx, newMockTransport(ID{1}))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StateComposed, out.State())

	require.NoError(t, out.Encrypt(nil, sender.Private[:], recipient.Public[:]))
	// Going back is rejected.
	assert.ErrorIs(t, out.Encrypt(nil, sender.Private[:], recipient.Public[:]), ErrInvalidTransition)
	assert.Equal(t, StateBlobEncrypted, out.State())
}

func TestOutboundUploadFailureAborts(t *testing.T) {
	sender, recipient := keys(t)
	transport := newMockTransport(ID{1})
	transport.uploadErr = errors.New("503 service unavailable")

	out := NewOutbound([]byte("data"))
	require.NoError(t, out.Encrypt(nil, sender.Private[:], recipient.Public[:]))

	_, err := out.Upload(context.Background(), transport)
	assert.ErrorIs(t, err, ErrBlobUploadFailed)
	assert.Equal(t, StateAborted, out.State())
	assert.ErrorIs(t, out.Err(), ErrBlobUploadFailed)

	_, err = out.Reference()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, out.MarkFrameBuilt(), ErrInvalidTransition)
	assert.Equal(t, StateAborted, out.State())
}

func TestOutboundEmptyIDAborts(t *testing.T) {
	sender, recipient := keys(t)
	out := NewOutbound([]byte("data"))
	require.NoError(t, out.Encrypt(nil, sender.Private[:], recipient.Public[:]))

	_, err := out.Upload(context.Background(), newMockTransport(ID{}))
	assert.ErrorIs(t, err, ErrBlobUploadFailed)
	assert.Equal(t, StateAborted, out.State())
}

func TestOutboundEncryptFailureAborts(t *testing.T) {
	_, recipient := keys(t)
	out := NewOutbound([]byte("data"))

	err := out.Encrypt(nil, make([]byte, 16), recipient.Public[:])
	assert.ErrorIs(t, err, crypto.ErrInvalidKeyLength)
	assert.Equal(t, StateAborted, out.State())
}

func TestOutboundCancellation(t *testing.T) {
	sender, recipient := keys(t)

	t.Run("before upload", func(t *testing.T) {
		transport := newMockTransport(ID{1})
		out := NewOutbound([]byte("data"))
		require.NoError(t, out.Encrypt(nil, sender.Private[:], recipient.Public[:]))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := out.Upload(ctx, transport)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, StateAborted, out.State())
		assert.Zero(t, transport.uploads, "cancelled send must not upload")
	})

	t.Run("before seal", func(t *testing.T) {
		out := NewOutbound([]byte("data"))
		require.NoError(t, out.Encrypt(nil, sender.Private[:], recipient.Public[:]))
		_, err := out.Upload(context.Background(), newMockTransport(ID{1}))
		require.NoError(t, err)
		require.NoError(t, out.MarkFrameBuilt())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, out.MarkSealed(ctx), context.Canceled)
		assert.Equal(t, StateAborted, out.State())
		assert.ErrorIs(t, out.MarkSent(), ErrInvalidTransition)
	})
}

func TestOutboundAbortIsTerminal(t *testing.T) {
	out := NewOutbound([]byte("data"))
	out.Abort(errors.New("user cancelled"))
	assert.Equal(t, StateAborted, out.State())
	assert.EqualError(t, out.Err(), "user cancelled")

	out.Abort(errors.New("second"))
	assert.EqualError(t, out.Err(), "user cancelled", "abort after terminal state is a no-op")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "composed", StateComposed.String())
	assert.Equal(t, "blob_uploaded", StateBlobUploaded.String())
	assert.Equal(t, "aborted", StateAborted.String())
	assert.Equal(t, "state(42)", State(42).String())
}
