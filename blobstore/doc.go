// Package blobstore is a development blob service for encrypted attachments.
//
// A Store keeps opaque encrypted blobs under random 16 byte IDs. MemoryStore
// holds them in process and RedisStore persists them under "blob:<hex id>"
// keys with a TTL. Server exposes a Store over the same HTTP routes the
// gateway uses (POST /upload_blob, GET /blobs/{id}), so gateway.Client can
// run against it unchanged. LocalTransport adapts a Store to
// interfaces.IBlobTransport without any HTTP in between.
//
// The service only ever sees ciphertext: blobs are encrypted by the sender
// before upload and the keys travel inside the sealed message.
package blobstore
