// Package blob coordinates attachments whose contents travel separately from
// the message that references them.
//
// An image or file message never carries its binary inline. The binary is
// sealed with secretbox under a fresh symmetric key and uploaded through an
// external blob transport; the message frame carries only the resulting
// [Reference] (blob ID, key and nonce). Because that frame is itself sealed
// with crypto_box, the symmetric key is protected by the outer seal.
//
// # Sending
//
// [Outbound] is an explicit state machine for one attachment send:
//
//	out := blob.NewOutbound(data)
//	if err := out.Encrypt(engine, sender.Private[:], recipientPK[:]); err != nil { ... }
//	if _, err := out.Upload(ctx, transport); err != nil { ... }
//	ref, _ := out.Reference()
//	// build and seal the frame, then:
//	out.MarkFrameBuilt(); out.MarkSealed(ctx); out.MarkSent()
//
// A failure or cancellation at any step leaves the Outbound in
// [StateAborted]; nothing after a failed upload can reference the blob.
//
// # Receiving
//
// [ResolveFrom] downloads the blob once and opens it with the reference key.
// Download errors are [ErrBlobFetchFailed]; tampering is
// crypto.ErrAuthenticationFailed.
package blob
