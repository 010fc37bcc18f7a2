// Package msgcrypt implements end-to-end encrypted messaging in the style of
// the Threema gateway: typed messages are framed, randomly padded and sealed
// with NaCl crypto_box; image and file attachments are encrypted under a
// fresh symmetric key and uploaded as blobs before the frame is built.
//
// # Getting Started
//
//	options := msgcrypt.NewOptions()
//	options.Blobs = blobstore.NewLocalTransport(blobstore.NewMemoryStore())
//
//	client, err := msgcrypt.New(options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	env, err := client.EncryptMessage(ctx, msgcrypt.OutgoingText{Body: "hi"},
//	    alice, bob.Public[:])
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	msg, err := client.DecryptMessage(env, alice.Public[:], bob.Private[:])
//
// # Attachments
//
// DecryptMessage never contacts the blob transport. Image and file messages
// decode to their blob reference; ResolveAttachment downloads and opens the
// binary, and Receive does both in one call.
//
// # Sending
//
// When Options carries a Sender and Directory, Send looks up the recipient
// public key, encrypts the message and posts it through the gateway. See
// package gateway for an HTTP implementation of both.
package msgcrypt
