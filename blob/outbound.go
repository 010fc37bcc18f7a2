package blob

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/msgcrypt/crypto"
)

// State is a step of an outbound attachment send.
type State uint8

const (
	// StateComposed means the attachment exists only as plaintext.
	StateComposed State = iota
	// StateBlobEncrypted means the blob is sealed under a fresh key.
	StateBlobEncrypted
	// StateBlobUploaded means the transport confirmed the upload and returned an ID.
	StateBlobUploaded
	// StateFrameBuilt means the reference was encoded into a message frame.
	StateFrameBuilt
	// StateSealed means the frame was sealed into an envelope.
	StateSealed
	// StateSent means the envelope was handed to the message sender.
	StateSent
	// StateAborted means a step failed or the send was cancelled.
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateComposed:
		return "composed"
	case StateBlobEncrypted:
		return "blob_encrypted"
	case StateBlobUploaded:
		return "blob_uploaded"
	case StateFrameBuilt:
		return "frame_built"
	case StateSealed:
		return "sealed"
	case StateSent:
		return "sent"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateSent || s == StateAborted
}

// Outbound drives one attachment through
//
//	Composed -> BlobEncrypted -> BlobUploaded -> FrameBuilt -> Sealed -> Sent
//
// Any failure moves it to Aborted. Transitions only go forward, so a frame
// can never be sealed before its blob upload was confirmed.
//
// An Outbound belongs to a single send and is not safe for concurrent use.
type Outbound struct {
	state    State
	data     []byte
	prepared *Prepared
	err      error
}

// NewOutbound starts a send for the given attachment contents.
func NewOutbound(data []byte) *Outbound {
	return &Outbound{state: StateComposed, data: data}
}

// State returns the current state.
func (o *Outbound) State() State {
	return o.state
}

// Err returns the error that aborted the send, if any.
func (o *Outbound) Err() error {
	return o.err
}

// Encrypted returns the encrypted blob once Encrypt has succeeded.
func (o *Outbound) Encrypted() []byte {
	if o.prepared == nil {
		return nil
	}
	return o.prepared.Encrypted
}

// Reference returns the blob reference. It is only available once the upload
// has been confirmed.
func (o *Outbound) Reference() (Reference, error) {
	if o.state < StateBlobUploaded || o.state == StateAborted {
		return Reference{}, fmt.Errorf("%w: reference unavailable in state %s", ErrInvalidTransition, o.state)
	}
	return o.prepared.Reference, nil
}

// Encrypt seals the attachment under a fresh symmetric key.
func (o *Outbound) Encrypt(engine *crypto.Engine, senderPrivateKey, recipientPublicKey []byte) error {
	if err := o.expect(StateComposed, StateBlobEncrypted); err != nil {
		return err
	}

	prepared, err := Prepare(engine, o.data, senderPrivateKey, recipientPublicKey)
	if err != nil {
		o.Abort(err)
		return err
	}
	o.prepared = prepared
	o.data = nil
	o.move(StateBlobEncrypted)
	return nil
}

// Upload hands the encrypted blob to the transport. The reference is only
// completed once the transport returns a non-zero ID.
func (o *Outbound) Upload(ctx context.Context, u Uploader) (ID, error) {
	if err := o.expect(StateBlobEncrypted, StateBlobUploaded); err != nil {
		return ID{}, err
	}
	if err := ctx.Err(); err != nil {
		err = fmt.Errorf("%w: %w", ErrBlobUploadFailed, err)
		o.Abort(err)
		return ID{}, err
	}
	if u == nil {
		err := fmt.Errorf("%w: no blob transport configured", ErrBlobUploadFailed)
		o.Abort(err)
		return ID{}, err
	}

	id, err := u.UploadBlob(ctx, o.prepared.Encrypted)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrBlobUploadFailed, err)
		o.Abort(err)
		return ID{}, err
	}
	if id.IsZero() {
		err := fmt.Errorf("%w: transport returned an empty blob id", ErrBlobUploadFailed)
		o.Abort(err)
		return ID{}, err
	}

	o.prepared.Reference.ID = id
	o.move(StateBlobUploaded)
	return id, nil
}

// MarkFrameBuilt records that the reference was encoded into a frame.
func (o *Outbound) MarkFrameBuilt() error {
	if err := o.expect(StateBlobUploaded, StateFrameBuilt); err != nil {
		return err
	}
	o.move(StateFrameBuilt)
	return nil
}

// MarkSealed records that the frame was sealed. A cancelled context aborts
// the send here, before anything can leave.
func (o *Outbound) MarkSealed(ctx context.Context) error {
	if err := o.expect(StateFrameBuilt, StateSealed); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		o.Abort(err)
		return err
	}
	o.move(StateSealed)
	return nil
}

// MarkSent records that the envelope was delivered. The symmetric key is
// wiped; the recipient has its own copy inside the sealed frame.
func (o *Outbound) MarkSent() error {
	if err := o.expect(StateSealed, StateSent); err != nil {
		return err
	}
	o.move(StateSent)
	o.prepared.Wipe()
	return nil
}

// Abort stops the send and wipes key material. Aborting a finished send is
// a no-op.
func (o *Outbound) Abort(err error) {
	if o.state.Terminal() {
		return
	}
	from := o.state
	o.err = err
	o.state = StateAborted
	if o.prepared != nil {
		o.prepared.Wipe()
	}
	o.data = nil

	logrus.WithFields(logrus.Fields{
		"function": "Abort",
		"package":  "blob",
		"from":     from.String(),
		"error":    fmt.Sprint(err),
	}).Warn("Outbound attachment aborted")
}

// expect checks that the want -> next transition is legal from the current state.
func (o *Outbound) expect(want, next State) error {
	if o.state != want {
		return fmt.Errorf("%w: %s -> %s from %s", ErrInvalidTransition, want, next, o.state)
	}
	return nil
}

func (o *Outbound) move(next State) {
	logrus.WithFields(logrus.Fields{
		"function": "move",
		"package":  "blob",
		"from":     o.state.String(),
		"to":       next.String(),
	}).Debug("Outbound attachment transition")
	o.state = next
}
