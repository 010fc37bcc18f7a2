// Package interfaces defines the collaborators the msgcrypt core calls
// through: blob transport, message sender and public key directory.
//
// The core never performs network I/O itself. Attachment kinds make exactly
// one [IBlobTransport] call per message; [IMessageSender] and [IDirectory]
// are only used by Client.Send.
//
// # Implementations
//
// The gateway package implements all three against a gateway HTTP API. The
// blobstore package provides an in-process [IBlobTransport]. The factory
// package picks one based on a [TransportConfig]:
//
//	cfg := factory.DefaultConfig()
//	blobs, err := factory.NewTransportFactory().CreateBlobTransport(cfg)
//
// # Configuration
//
// [TransportConfig.Validate] enforces:
//
//   - Timeout within [MinTimeout, MaxTimeout]
//   - gateway mode requires BaseURL, a valid From identity and Secret
package interfaces
