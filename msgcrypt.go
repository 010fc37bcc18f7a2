package msgcrypt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/msgcrypt/blob"
	"github.com/opd-ai/msgcrypt/crypto"
	"github.com/opd-ai/msgcrypt/interfaces"
	"github.com/opd-ai/msgcrypt/limits"
	"github.com/opd-ai/msgcrypt/message"
)

var (
	// ErrInvalidOptions indicates options that cannot build a Client.
	ErrInvalidOptions = errors.New("invalid options")
	// ErrNoAttachment is returned by ResolveAttachment for kinds without a blob.
	ErrNoAttachment = errors.New("message has no attachment")
	// ErrNotConfigured is returned when an operation needs a collaborator the
	// client was built without.
	ErrNotConfigured = errors.New("collaborator not configured")
)

// Options contains the collaborators and parameters of a Client.
type Options struct {
	// From is the sender identity used by Send
	From crypto.Identity
	// Engine seals and opens boxes; nil means crypto.DefaultEngine
	Engine *crypto.Engine
	// Padding is the entropy source for frame padding; nil means the engine's
	Padding io.Reader
	// MinFrameLength is the plaintext frame floor
	MinFrameLength int

	Blobs     interfaces.IBlobTransport
	Sender    interfaces.IMessageSender
	Directory interfaces.IDirectory
}

// NewOptions returns options with default values and no collaborators.
func NewOptions() *Options {
	return &Options{
		MinFrameLength: limits.DefaultMinFrameLength,
	}
}

// Client combines framing, sealing and blob coordination. It holds no
// mutable state, so a single Client may serve concurrent callers; key
// material passed to its methods is only read.
type Client struct {
	from        crypto.Identity
	engine      *crypto.Engine
	padding     io.Reader
	minFrameLen int

	blobs     interfaces.IBlobTransport
	sender    interfaces.IMessageSender
	directory interfaces.IDirectory
}

// New creates a Client. A nil options value means NewOptions().
func New(options *Options) (*Client, error) {
	if options == nil {
		options = NewOptions()
	}
	if options.MinFrameLength < 1 || options.MinFrameLength > limits.MaxMinFrameLength {
		return nil, fmt.Errorf("%w: min frame length %d not in [1, %d]",
			ErrInvalidOptions, options.MinFrameLength, limits.MaxMinFrameLength)
	}
	if options.From != "" {
		if _, err := crypto.ParseIdentity(string(options.From)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
		}
	}

	engine := options.Engine
	if engine == nil {
		engine = crypto.DefaultEngine
	}
	padding := options.Padding
	if padding == nil {
		padding = engine.Rand()
	}

	logrus.WithFields(logrus.Fields{
		"function":         "New",
		"from":             options.From,
		"min_frame_length": options.MinFrameLength,
		"blobs":            options.Blobs != nil,
		"sender":           options.Sender != nil,
		"directory":        options.Directory != nil,
	}).Debug("Created client")

	return &Client{
		from:        options.From,
		engine:      engine,
		padding:     padding,
		minFrameLen: options.MinFrameLength,
		blobs:       options.Blobs,
		sender:      options.Sender,
		directory:   options.Directory,
	}, nil
}

// EncryptMessage frames and seals msg for recipientPublicKey. Attachment
// kinds encrypt and upload their blob first; the frame is only built once
// the upload has been confirmed.
func (c *Client) EncryptMessage(ctx context.Context, msg Outgoing, senderKeys *crypto.KeyPair, recipientPublicKey []byte) (*crypto.Envelope, error) {
	env, _, err := c.encrypt(ctx, msg, senderKeys, recipientPublicKey)
	return env, err
}

func (c *Client) encrypt(ctx context.Context, msg Outgoing, senderKeys *crypto.KeyPair, recipientPublicKey []byte) (*crypto.Envelope, *blob.Outbound, error) {
	if senderKeys == nil {
		return nil, nil, fmt.Errorf("%w: no sender key pair", crypto.ErrInvalidKeyLength)
	}
	if msg == nil {
		return nil, nil, fmt.Errorf("%w: nil message", message.ErrMalformedPayload)
	}

	var out *blob.Outbound
	typed, err := msg.typed(func(data []byte) (blob.Reference, error) {
		out = blob.NewOutbound(data)
		if err := out.Encrypt(c.engine, senderKeys.Private[:], recipientPublicKey); err != nil {
			return blob.Reference{}, err
		}
		if _, err := out.Upload(ctx, c.blobs); err != nil {
			return blob.Reference{}, err
		}
		return out.Reference()
	})
	if err != nil {
		return nil, out, err
	}

	frameBytes, err := message.Encode(typed, c.minFrameLen, c.padding)
	if err != nil {
		abort(out, err)
		return nil, out, err
	}
	defer crypto.ZeroBytes(frameBytes)

	if out != nil {
		if err := out.MarkFrameBuilt(); err != nil {
			return nil, out, err
		}
	}

	env, err := c.engine.Seal(frameBytes, recipientPublicKey, senderKeys.Private[:])
	if err != nil {
		abort(out, err)
		return nil, out, err
	}

	if out != nil {
		if err := out.MarkSealed(ctx); err != nil {
			return nil, out, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":   "EncryptMessage",
		"type":       typed.Type().String(),
		"frame_size": len(frameBytes),
		"box_size":   len(env.Box),
	}).Debug("Message encrypted")

	return env, out, nil
}

// DecryptMessage opens env and decodes the typed message inside. It never
// contacts the blob transport: image and file messages carry only their
// blob reference. Use ResolveAttachment or Receive to fetch the binary.
func (c *Client) DecryptMessage(env *crypto.Envelope, senderPublicKey, recipientPrivateKey []byte) (message.Message, error) {
	plain, err := c.engine.Open(env, senderPublicKey, recipientPrivateKey)
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroBytes(plain)

	msg, err := message.Decode(plain)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "DecryptMessage",
			"error":    err.Error(),
		}).Warn("Authenticated frame did not decode")
		return nil, err
	}
	return msg, nil
}

// ResolveAttachment downloads and opens the blob referenced by an image or
// file message. It performs exactly one download.
func (c *Client) ResolveAttachment(ctx context.Context, msg message.Message) ([]byte, error) {
	var ref blob.Reference
	switch m := msg.(type) {
	case message.Image:
		ref = m.Blob
	case message.File:
		ref = m.Blob
	default:
		return nil, ErrNoAttachment
	}
	if c.blobs == nil {
		return nil, fmt.Errorf("%w: %w: blob transport", blob.ErrBlobFetchFailed, ErrNotConfigured)
	}
	return blob.ResolveFrom(ctx, c.engine, c.blobs, ref)
}

// Received is a decrypted message and, for attachment kinds, the resolved
// binary.
type Received struct {
	Message    message.Message
	Attachment []byte
}

// Wipe zeroes the attachment buffer.
func (r *Received) Wipe() {
	crypto.ZeroBytes(r.Attachment)
}

// Receive decrypts env and resolves its attachment, if any.
func (c *Client) Receive(ctx context.Context, env *crypto.Envelope, senderPublicKey, recipientPrivateKey []byte) (*Received, error) {
	msg, err := c.DecryptMessage(env, senderPublicKey, recipientPrivateKey)
	if err != nil {
		return nil, err
	}

	received := &Received{Message: msg}
	if !msg.Type().HasAttachment() {
		return received, nil
	}

	data, err := c.ResolveAttachment(ctx, msg)
	if err != nil {
		return nil, err
	}
	received.Attachment = data
	return received, nil
}

// Send looks up the recipient key, encrypts msg and posts it from the
// client's identity. The attachment send only reaches StateSent once the
// gateway accepted the envelope.
func (c *Client) Send(ctx context.Context, to crypto.Identity, msg Outgoing, senderKeys *crypto.KeyPair) (string, error) {
	if c.sender == nil || c.directory == nil || c.from == "" {
		return "", fmt.Errorf("%w: Send needs From, Sender and Directory", ErrNotConfigured)
	}
	if _, err := crypto.ParseIdentity(string(to)); err != nil {
		return "", err
	}

	recipientPK, err := c.directory.LookupPublicKey(ctx, to)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", to, err)
	}

	env, out, err := c.encrypt(ctx, msg, senderKeys, recipientPK[:])
	if err != nil {
		return "", err
	}

	id, err := c.sender.SendE2E(ctx, c.from, to, env)
	if err != nil {
		abort(out, err)
		logrus.WithFields(logrus.Fields{
			"function": "Send",
			"to":       to,
			"error":    err.Error(),
		}).Warn("Gateway rejected message")
		return "", err
	}

	if out != nil {
		if err := out.MarkSent(); err != nil {
			return "", err
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":   "Send",
		"to":         to,
		"message_id": id,
	}).Info("Message sent")

	return id, nil
}

func abort(out *blob.Outbound, err error) {
	if out != nil {
		out.Abort(err)
	}
}
