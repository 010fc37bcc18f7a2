package msgcrypt

import (
	"github.com/opd-ai/msgcrypt/blob"
	"github.com/opd-ai/msgcrypt/message"
)

// DefaultMimeType is used for files sent without a MIME type.
const DefaultMimeType = "application/octet-stream"

// uploadFunc encrypts and uploads an attachment, returning its reference.
type uploadFunc func(data []byte) (blob.Reference, error)

// Outgoing is a message as composed by the application, before any
// attachment has been uploaded.
type Outgoing interface {
	typed(upload uploadFunc) (message.Message, error)
}

// OutgoingText is a text message.
type OutgoingText struct {
	Body string
}

func (m OutgoingText) typed(uploadFunc) (message.Message, error) {
	return message.Text{Body: m.Body}, nil
}

// OutgoingImage is an image attachment.
type OutgoingImage struct {
	Data []byte
}

func (m OutgoingImage) typed(upload uploadFunc) (message.Message, error) {
	ref, err := upload(m.Data)
	if err != nil {
		return nil, err
	}
	// Images carry no metadata on the wire.
	ref.Size = 0
	return message.Image{Blob: ref}, nil
}

// OutgoingFile is a file attachment with metadata.
type OutgoingFile struct {
	Data     []byte
	MimeType string
	FileName string
}

func (m OutgoingFile) typed(upload uploadFunc) (message.Message, error) {
	ref, err := upload(m.Data)
	if err != nil {
		return nil, err
	}
	ref.MimeType = m.MimeType
	if ref.MimeType == "" {
		ref.MimeType = DefaultMimeType
	}
	ref.FileName = m.FileName
	return message.File{Blob: ref}, nil
}

// OutgoingReceipt is a delivery receipt.
type OutgoingReceipt struct {
	Status     message.ReceiptStatus
	MessageIDs []message.MessageID
}

func (m OutgoingReceipt) typed(uploadFunc) (message.Message, error) {
	return message.DeliveryReceipt{Status: m.Status, MessageIDs: m.MessageIDs}, nil
}
