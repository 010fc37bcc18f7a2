// Package gateway is an HTTP client for a Threema-style message gateway.
//
// Client implements the three collaborator interfaces of package interfaces:
// it posts end-to-end envelopes (IMessageSender), uploads and downloads
// encrypted blobs (IBlobTransport) and looks up public keys (IDirectory).
// It also offers the basic-mode endpoints: server-side encrypted text via
// SendSimple, identity lookups by phone or email, and the credit balance.
//
// Every request authenticates with the API identity and secret from the
// transport configuration. The secret is sent as a form or query value and
// is never logged.
//
// Non-200 responses map to sentinel errors:
//
//	400  per call: ErrBadSenderOrRecipient for sends, ErrBadBlob for uploads
//	401  ErrBadCredentials
//	402  ErrNoCredits
//	404  ErrIDNotFound
//	413  ErrMessageTooLong
//	500  ErrServerError
//
// Any other status is reported as ErrUnexpectedStatus.
package gateway
