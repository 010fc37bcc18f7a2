package interfaces

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opd-ai/msgcrypt/blob"
	"github.com/opd-ai/msgcrypt/crypto"
)

// ErrNotFound is returned by an IDirectory for an unknown identity.
var ErrNotFound = errors.New("identity not found")

// IBlobTransport stores and fetches encrypted attachment blobs.
// It treats every error as terminal; retries are the implementation's concern.
type IBlobTransport interface {
	// UploadBlob stores encrypted bytes and returns the server assigned ID
	UploadBlob(ctx context.Context, data []byte) (blob.ID, error)

	// DownloadBlob returns the encrypted bytes stored under id
	DownloadBlob(ctx context.Context, id blob.ID) ([]byte, error)
}

// IMessageSender delivers a sealed envelope to the gateway.
type IMessageSender interface {
	// SendE2E posts the envelope and returns the gateway message ID
	SendE2E(ctx context.Context, from, to crypto.Identity, env *crypto.Envelope) (string, error)
}

// IDirectory resolves identities to public keys.
type IDirectory interface {
	// LookupPublicKey returns the public key of id or ErrNotFound
	LookupPublicKey(ctx context.Context, id crypto.Identity) ([crypto.KeySize]byte, error)
}

// TransportMode selects the collaborator implementation.
type TransportMode string

const (
	// ModeGateway talks to a gateway over HTTP.
	ModeGateway TransportMode = "gateway"
	// ModeMemory keeps blobs in process; used for local runs and tests.
	ModeMemory TransportMode = "memory"
)

// Configuration bounds.
const (
	// MinTimeout is the minimum allowed request timeout.
	MinTimeout = 100 * time.Millisecond
	// MaxTimeout is the maximum allowed request timeout (10 minutes).
	MaxTimeout = 10 * time.Minute
)

var (
	// ErrInvalidMode indicates an unknown transport mode.
	ErrInvalidMode = errors.New("invalid transport mode")
	// ErrInvalidTimeout indicates a timeout outside [MinTimeout, MaxTimeout].
	ErrInvalidTimeout = errors.New("invalid timeout")
	// ErrMissingEndpoint indicates gateway mode without a base URL.
	ErrMissingEndpoint = errors.New("missing gateway base URL")
	// ErrMissingCredentials indicates gateway mode without an API identity or secret.
	ErrMissingCredentials = errors.New("missing gateway credentials")
)

// TransportConfig holds configuration for collaborator implementations.
type TransportConfig struct {
	// Mode selects gateway or in-memory collaborators
	Mode TransportMode

	// BaseURL is the gateway API root, e.g. https://msgapi.example.com
	BaseURL string

	// From is the gateway identity used for API authentication
	From crypto.Identity

	// Secret is the API secret for From. It is never logged.
	Secret string

	// Timeout bounds every HTTP request
	Timeout time.Duration
}

// Validate checks the configuration for internal consistency.
func (c *TransportConfig) Validate() error {
	if c.Timeout < MinTimeout || c.Timeout > MaxTimeout {
		return fmt.Errorf("%w: %s not in [%s, %s]", ErrInvalidTimeout, c.Timeout, MinTimeout, MaxTimeout)
	}
	switch c.Mode {
	case ModeMemory:
		return nil
	case ModeGateway:
		if c.BaseURL == "" {
			return ErrMissingEndpoint
		}
		if c.From == "" || c.Secret == "" {
			return ErrMissingCredentials
		}
		if _, err := crypto.ParseIdentity(string(c.From)); err != nil {
			return fmt.Errorf("%w: %v", ErrMissingCredentials, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
}
