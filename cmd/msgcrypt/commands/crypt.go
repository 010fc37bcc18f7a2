package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opd-ai/msgcrypt"
	"github.com/opd-ai/msgcrypt/crypto"
	"github.com/opd-ai/msgcrypt/message"
)

// composeFlags selects the outgoing message kind.
type composeFlags struct {
	text     string
	image    string
	file     string
	mimeType string
	fileName string
	receipt  string
	ids      []string
}

func (f *composeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.text, "text", "", "text message body")
	cmd.Flags().StringVar(&f.image, "image", "", "path of an image to attach")
	cmd.Flags().StringVar(&f.file, "file", "", "path of a file to attach")
	cmd.Flags().StringVar(&f.mimeType, "mime", "", "MIME type of --file")
	cmd.Flags().StringVar(&f.fileName, "name", "", "file name of --file (default: base name of the path)")
	cmd.Flags().StringVar(&f.receipt, "receipt", "", "delivery receipt status: received, read, ack or decline")
	cmd.Flags().StringSliceVar(&f.ids, "ids", nil, "message IDs acknowledged by --receipt")
}

var receiptStatuses = map[string]message.ReceiptStatus{
	"received": message.ReceiptReceived,
	"read":     message.ReceiptRead,
	"ack":      message.ReceiptUserAck,
	"decline":  message.ReceiptUserDecline,
}

func (f *composeFlags) outgoing() (msgcrypt.Outgoing, error) {
	set := 0
	for _, v := range []string{f.text, f.image, f.file, f.receipt} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of --text, --image, --file or --receipt is required")
	}

	switch {
	case f.text != "":
		return msgcrypt.OutgoingText{Body: f.text}, nil
	case f.image != "":
		data, err := os.ReadFile(f.image)
		if err != nil {
			return nil, err
		}
		return msgcrypt.OutgoingImage{Data: data}, nil
	case f.file != "":
		data, err := os.ReadFile(f.file)
		if err != nil {
			return nil, err
		}
		name := f.fileName
		if name == "" {
			name = filepath.Base(f.file)
		}
		return msgcrypt.OutgoingFile{Data: data, MimeType: f.mimeType, FileName: name}, nil
	default:
		status, ok := receiptStatuses[strings.ToLower(f.receipt)]
		if !ok {
			return nil, fmt.Errorf("unknown receipt status %q", f.receipt)
		}
		ids := make([]message.MessageID, 0, len(f.ids))
		for _, s := range f.ids {
			id, err := message.ParseMessageID(s)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return msgcrypt.OutgoingReceipt{Status: status, MessageIDs: ids}, nil
	}
}

func (f *composeFlags) hasAttachment() bool {
	return f.image != "" || f.file != ""
}

// client returns a client wired for uploads when the message needs one, and
// an offline client otherwise.
func (a *app) client(needsTransport bool) (*msgcrypt.Client, error) {
	if needsTransport {
		return a.factory.CreateClient()
	}
	return msgcrypt.New(msgcrypt.NewOptions())
}

func encryptCmd(a *app) *cobra.Command {
	var (
		key     keyFlags
		toKey   string
		compose composeFlags
	)
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a message for a recipient public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := a.keyPair(key)
			if err != nil {
				return err
			}
			defer kp.Wipe()
			recipient, err := crypto.PublicKeyFromHex(toKey)
			if err != nil {
				return err
			}
			msg, err := compose.outgoing()
			if err != nil {
				return err
			}
			client, err := a.client(compose.hasAttachment())
			if err != nil {
				return err
			}

			env, err := client.EncryptMessage(cmd.Context(), msg, kp, recipient[:])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nonce: %s\n", env.NonceHex())
			fmt.Fprintf(out, "box:   %s\n", env.BoxHex())
			return nil
		},
	}
	key.register(cmd, "sender")
	cmd.Flags().StringVar(&toKey, "to-key", "", "recipient public key hex")
	_ = cmd.MarkFlagRequired("to-key")
	compose.register(cmd)
	return cmd
}

func decryptCmd(a *app) *cobra.Command {
	var (
		key     keyFlags
		fromKey string
		nonce   string
		box     string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a message from a sender public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := a.keyPair(key)
			if err != nil {
				return err
			}
			defer kp.Wipe()
			sender, err := crypto.PublicKeyFromHex(fromKey)
			if err != nil {
				return err
			}
			env, err := crypto.EnvelopeFromHex(strings.TrimSpace(nonce), strings.TrimSpace(box))
			if err != nil {
				return err
			}

			client, err := a.client(outPath != "")
			if err != nil {
				return err
			}
			msg, err := client.DecryptMessage(env, sender[:], kp.Private[:])
			if err != nil {
				return err
			}
			printMessage(cmd.OutOrStdout(), msg)

			if outPath == "" || !msg.Type().HasAttachment() {
				return nil
			}
			data, err := client.ResolveAttachment(cmd.Context(), msg)
			if err != nil {
				return err
			}
			defer crypto.ZeroBytes(data)
			return os.WriteFile(outPath, data, 0o600)
		},
	}
	key.register(cmd, "recipient")
	cmd.Flags().StringVar(&fromKey, "from-key", "", "sender public key hex")
	cmd.Flags().StringVar(&nonce, "nonce", "", "nonce hex")
	cmd.Flags().StringVar(&box, "box", "", "box hex")
	cmd.Flags().StringVar(&outPath, "out", "", "download and decrypt the attachment to this path")
	_ = cmd.MarkFlagRequired("from-key")
	_ = cmd.MarkFlagRequired("nonce")
	_ = cmd.MarkFlagRequired("box")
	return cmd
}

func printMessage(w io.Writer, msg message.Message) {
	switch m := msg.(type) {
	case message.Text:
		fmt.Fprintf(w, "text: %s\n", m.Body)
	case message.Image:
		fmt.Fprintf(w, "image: blob %s\n", m.Blob.ID)
	case message.File:
		fmt.Fprintf(w, "file: blob %s, %d bytes, %s, %q\n", m.Blob.ID, m.Blob.Size, m.Blob.MimeType, m.Blob.FileName)
	case message.DeliveryReceipt:
		ids := make([]string, len(m.MessageIDs))
		for i, id := range m.MessageIDs {
			ids[i] = id.String()
		}
		fmt.Fprintf(w, "receipt: %s %s\n", m.Status, strings.Join(ids, ","))
	}
}
