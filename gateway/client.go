package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/msgcrypt/blob"
	"github.com/opd-ai/msgcrypt/crypto"
	"github.com/opd-ai/msgcrypt/interfaces"
	"github.com/opd-ai/msgcrypt/limits"
)

// DefaultBaseURL is the public Threema gateway API root.
const DefaultBaseURL = "https://msgapi.threema.ch"

// maxTextResponse bounds every non-blob response body.
const maxTextResponse = 4096

// Client is a gateway API client. It is safe for concurrent use.
type Client struct {
	base   string
	from   crypto.Identity
	secret string
	http   *http.Client
}

var (
	_ interfaces.IMessageSender = (*Client)(nil)
	_ interfaces.IBlobTransport = (*Client)(nil)
	_ interfaces.IDirectory     = (*Client)(nil)
)

// NewClient creates a client from cfg. An empty Mode is treated as gateway
// mode. A nil httpClient means a client with cfg.Timeout.
func NewClient(cfg interfaces.TransportConfig, httpClient *http.Client) (*Client, error) {
	if cfg.Mode == "" {
		cfg.Mode = interfaces.ModeGateway
	}
	if cfg.Mode != interfaces.ModeGateway {
		return nil, fmt.Errorf("%w: gateway client needs %q, got %q", interfaces.ErrInvalidMode, interfaces.ModeGateway, cfg.Mode)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewClient",
		"base_url": cfg.BaseURL,
		"from":     cfg.From,
		"timeout":  cfg.Timeout,
	}).Debug("Created gateway client")

	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		from:   cfg.From,
		secret: cfg.Secret,
		http:   httpClient,
	}, nil
}

// From returns the API identity of the client.
func (c *Client) From() crypto.Identity {
	return c.from
}

// SendE2E posts an end-to-end encrypted envelope and returns the gateway
// message ID. from must equal the client identity.
func (c *Client) SendE2E(ctx context.Context, from, to crypto.Identity, env *crypto.Envelope) (string, error) {
	if from != c.from {
		return "", fmt.Errorf("%w: client authenticates as %s, not %s", ErrBadSenderOrRecipient, c.from, from)
	}
	if _, err := crypto.ParseIdentity(string(to)); err != nil {
		return "", err
	}
	if env == nil {
		return "", fmt.Errorf("%w: nil envelope", crypto.ErrInvalidNonceLength)
	}

	form := c.credentials()
	form.Set("to", string(to))
	form.Set("nonce", env.NonceHex())
	form.Set("box", env.BoxHex())

	body, err := c.postForm(ctx, "/send_e2e", form, ErrBadSenderOrRecipient)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// SendSimple sends text in basic mode, where the gateway encrypts on the
// sender's behalf. Text longer than limits.MaxTextLength bytes is rejected
// before any request is made.
func (c *Client) SendSimple(ctx context.Context, to Recipient, text string) (string, error) {
	if len(text) > limits.MaxTextLength {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrMessageTooLong, len(text), limits.MaxTextLength)
	}
	if err := to.validate(); err != nil {
		return "", err
	}

	form := c.credentials()
	form.Set(to.field, to.value)
	form.Set("text", text)

	body, err := c.postForm(ctx, "/send_simple", form, ErrBadSenderOrRecipient)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// UploadBlob uploads encrypted blob bytes as multipart field "blob" and
// returns the assigned blob ID.
func (c *Client) UploadBlob(ctx context.Context, data []byte) (blob.ID, error) {
	if len(data) > limits.MaxEncryptedBlob {
		return blob.ID{}, fmt.Errorf("%w: %w", ErrMessageTooLong, limits.ErrMessageTooLarge)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="blob"`)
	header.Set("Content-Type", "application/octet-stream")
	part, err := mw.CreatePart(header)
	if err != nil {
		return blob.ID{}, err
	}
	if _, err := part.Write(data); err != nil {
		return blob.ID{}, err
	}
	if err := mw.Close(); err != nil {
		return blob.ID{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/upload_blob", c.credentials()), &buf)
	if err != nil {
		return blob.ID{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "text/plain")

	body, err := c.do(req, "/upload_blob", ErrBadBlob, maxTextResponse)
	if err != nil {
		return blob.ID{}, err
	}

	id, err := blob.ParseID(strings.TrimSpace(string(body)))
	if err != nil {
		return blob.ID{}, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return id, nil
}

// DownloadBlob fetches the encrypted bytes of a blob.
func (c *Client) DownloadBlob(ctx context.Context, id blob.ID) ([]byte, error) {
	return c.get(ctx, "/blobs/"+id.String(), limits.MaxEncryptedBlob)
}

// LookupPublicKey fetches the public key of an identity. A missing identity
// is reported as ErrIDNotFound, which matches interfaces.ErrNotFound.
func (c *Client) LookupPublicKey(ctx context.Context, id crypto.Identity) ([32]byte, error) {
	if _, err := crypto.ParseIdentity(string(id)); err != nil {
		return [32]byte{}, err
	}
	body, err := c.get(ctx, "/pubkeys/"+url.PathEscape(string(id)), maxTextResponse)
	if err != nil {
		return [32]byte{}, err
	}
	key, err := crypto.PublicKeyFromHex(strings.TrimSpace(string(body)))
	if err != nil {
		return [32]byte{}, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return key, nil
}

// LookupID finds the identity linked to a phone number, e-mail address or
// their hashes.
func (c *Client) LookupID(ctx context.Context, criterion LookupCriterion) (crypto.Identity, error) {
	if err := criterion.validate(); err != nil {
		return "", err
	}
	path := "/lookup/" + string(criterion.Kind) + "/" + url.PathEscape(criterion.Value)
	body, err := c.get(ctx, path, maxTextResponse)
	if err != nil {
		return "", err
	}
	id, err := crypto.ParseIdentity(strings.TrimSpace(string(body)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return id, nil
}

// Credits returns the remaining credit balance of the account.
func (c *Client) Credits(ctx context.Context) (int64, error) {
	body, err := c.get(ctx, "/credits", maxTextResponse)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return n, nil
}

func (c *Client) credentials() url.Values {
	v := url.Values{}
	v.Set("from", string(c.from))
	v.Set("secret", c.secret)
	return v
}

func (c *Client) endpoint(path string, query url.Values) string {
	if query == nil {
		return c.base + path
	}
	return c.base + path + "?" + query.Encode()
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, badRequest error) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return c.do(req, path, badRequest, maxTextResponse)
}

func (c *Client) get(ctx context.Context, path string, maxBody int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, c.credentials()), nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, path, nil, maxBody)
}

// do executes req and returns the body of a 200 response. path is logged in
// place of the URL so the secret never reaches the log.
func (c *Client) do(req *http.Request, path string, badRequest error, maxBody int) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "do",
			"method":   req.Method,
			"path":     path,
			"error":    err.Error(),
		}).Warn("Gateway request failed")
		return nil, fmt.Errorf("gateway %s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp.StatusCode, badRequest); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "do",
			"method":   req.Method,
			"path":     path,
			"status":   resp.StatusCode,
		}).Warn("Gateway returned error status")
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxTextResponse))
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(maxBody)+1))
	if err != nil {
		return nil, fmt.Errorf("gateway %s %s: %w", req.Method, path, err)
	}
	if len(body) > maxBody {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrBadResponse, maxBody)
	}

	logrus.WithFields(logrus.Fields{
		"function":  "do",
		"method":    req.Method,
		"path":      path,
		"body_size": len(body),
	}).Debug("Gateway request completed")

	return body, nil
}
