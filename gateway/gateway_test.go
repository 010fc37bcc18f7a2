package gateway

import (
	"context"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/msgcrypt/blob"
	"github.com/opd-ai/msgcrypt/crypto"
	"github.com/opd-ai/msgcrypt/interfaces"
	"github.com/opd-ai/msgcrypt/limits"
)

const (
	testFrom   = crypto.Identity("*TESTGW1")
	testSecret = "s3cr3t"
)

// fakeGateway serves the gateway API from memory.
type fakeGateway struct {
	mu       sync.Mutex
	keys     map[string]string
	blobs    map[string][]byte
	forms    []map[string]string
	requests int
	status   int
}

func newFakeGateway(t *testing.T) (*fakeGateway, *Client) {
	t.Helper()
	g := &fakeGateway{
		keys:  map[string]string{"ECHOECHO": strings.Repeat("ab", 32)},
		blobs: map[string][]byte{},
	}

	r := mux.NewRouter()
	r.Use(g.auth)
	r.HandleFunc("/send_e2e", g.sendE2E).Methods(http.MethodPost)
	r.HandleFunc("/send_simple", g.sendSimple).Methods(http.MethodPost)
	r.HandleFunc("/upload_blob", g.upload).Methods(http.MethodPost)
	r.HandleFunc("/blobs/{id}", g.download).Methods(http.MethodGet)
	r.HandleFunc("/pubkeys/{id}", g.pubkey).Methods(http.MethodGet)
	r.HandleFunc("/lookup/{kind}/{value}", g.lookup).Methods(http.MethodGet)
	r.HandleFunc("/credits", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "100\n")
	}).Methods(http.MethodGet)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c, err := NewClient(interfaces.TransportConfig{
		BaseURL: srv.URL,
		From:    testFrom,
		Secret:  testSecret,
		Timeout: 5 * time.Second,
	}, srv.Client())
	require.NoError(t, err)
	return g, c
}

func (g *fakeGateway) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.requests++
		status := g.status
		g.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			return
		}

		from, secret := r.URL.Query().Get("from"), r.URL.Query().Get("secret")
		if r.Method == http.MethodPost && r.URL.Path != "/upload_blob" {
			if err := r.ParseForm(); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			from, secret = r.PostForm.Get("from"), r.PostForm.Get("secret")
		}
		if from != string(testFrom) || secret != testSecret {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *fakeGateway) record(r *http.Request) {
	form := map[string]string{}
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}
	g.mu.Lock()
	g.forms = append(g.forms, form)
	g.mu.Unlock()
}

func (g *fakeGateway) sendE2E(w http.ResponseWriter, r *http.Request) {
	g.record(r)
	g.mu.Lock()
	_, ok := g.keys[r.PostForm.Get("to")]
	g.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	io.WriteString(w, "0a1b2c3d4e5f6071")
}

func (g *fakeGateway) sendSimple(w http.ResponseWriter, r *http.Request) {
	g.record(r)
	if len(r.PostForm.Get("text")) > limits.MaxTextLength {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}
	io.WriteString(w, "1122334455667788")
}

func (g *fakeGateway) upload(w http.ResponseWriter, r *http.Request) {
	data, err := readBlobPart(r)
	if err != nil || len(data) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	id := hex.EncodeToString(data[:min(len(data), 16)])
	id += strings.Repeat("0", 32-len(id))
	g.mu.Lock()
	g.blobs[id] = data
	g.mu.Unlock()
	io.WriteString(w, id+"\n")
}

func readBlobPart(r *http.Request) ([]byte, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		p, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		if p.FormName() == "blob" {
			return io.ReadAll(p)
		}
	}
}

func (g *fakeGateway) sentForms() []map[string]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]map[string]string(nil), g.forms...)
}

func (g *fakeGateway) requestCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests
}

func (g *fakeGateway) download(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	data, ok := g.blobs[mux.Vars(r)["id"]]
	g.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Write(data)
}

func (g *fakeGateway) pubkey(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	key, ok := g.keys[mux.Vars(r)["id"]]
	g.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	io.WriteString(w, key)
}

func (g *fakeGateway) lookup(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	switch {
	case vars["kind"] == "phone" && vars["value"] == "41791234567":
		io.WriteString(w, "ECHOECHO")
	case vars["kind"] == "email" && vars["value"] == "test@example.com":
		io.WriteString(w, "ECHOECHO")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  interfaces.TransportConfig
		want error
	}{
		{"no url", interfaces.TransportConfig{From: testFrom, Secret: "x", Timeout: time.Second}, interfaces.ErrMissingEndpoint},
		{"no secret", interfaces.TransportConfig{BaseURL: "http://x", From: testFrom, Timeout: time.Second}, interfaces.ErrMissingCredentials},
		{"bad timeout", interfaces.TransportConfig{BaseURL: "http://x", From: testFrom, Secret: "x"}, interfaces.ErrInvalidTimeout},
		{"memory mode", interfaces.TransportConfig{Mode: interfaces.ModeMemory, Timeout: time.Second}, interfaces.ErrInvalidMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSendE2E(t *testing.T) {
	g, c := newFakeGateway(t)
	env, err := crypto.NewEnvelope(make([]byte, crypto.NonceSize), make([]byte, 40))
	require.NoError(t, err)

	id, err := c.SendE2E(context.Background(), testFrom, "ECHOECHO", env)
	require.NoError(t, err)
	assert.Equal(t, "0a1b2c3d4e5f6071", id)

	require.Equal(t, 1, len(g.sentForms()))
	assert.Equal(t, "ECHOECHO", g.sentForms()[0]["to"])
	assert.Equal(t, env.NonceHex(), g.sentForms()[0]["nonce"])
	assert.Equal(t, env.BoxHex(), g.sentForms()[0]["box"])

	_, err = c.SendE2E(context.Background(), testFrom, "UNKNOWN1", env)
	assert.ErrorIs(t, err, ErrBadSenderOrRecipient)

	_, err = c.SendE2E(context.Background(), "OTHERXXX", "ECHOECHO", env)
	assert.ErrorIs(t, err, ErrBadSenderOrRecipient)
}

func TestSendSimple(t *testing.T) {
	g, c := newFakeGateway(t)
	ctx := context.Background()

	ok := strings.Repeat("à", limits.MaxTextLength/2)
	_, err := c.SendSimple(ctx, ToID("ECHOECHO"), ok)
	require.NoError(t, err)

	_, err = c.SendSimple(ctx, ToPhone("+41791234567"), "hi")
	require.NoError(t, err)
	assert.Equal(t, "41791234567", g.sentForms()[1]["phone"])

	_, err = c.SendSimple(ctx, ToEmail("test@example.com"), "hi")
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", g.sentForms()[2]["email"])

	before := g.requestCount()
	_, err = c.SendSimple(ctx, ToID("ECHOECHO"), ok+"x")
	assert.ErrorIs(t, err, ErrMessageTooLong)
	assert.Equal(t, before, g.requestCount())

	_, err = c.SendSimple(ctx, Recipient{}, "hi")
	assert.ErrorIs(t, err, ErrBadSenderOrRecipient)
}

func TestBlobUploadDownload(t *testing.T) {
	_, c := newFakeGateway(t)
	ctx := context.Background()
	data := []byte("encrypted blob bytes")

	id, err := c.UploadBlob(ctx, data)
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	got, err := c.DownloadBlob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = c.DownloadBlob(ctx, blob.ID{0xff})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = c.UploadBlob(ctx, nil)
	assert.ErrorIs(t, err, ErrBadBlob)
}

func TestLookups(t *testing.T) {
	_, c := newFakeGateway(t)
	ctx := context.Background()

	key, err := c.LookupPublicKey(ctx, "ECHOECHO")
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), key[0])

	_, err = c.LookupPublicKey(ctx, "NOTHERE1")
	assert.ErrorIs(t, err, ErrIDNotFound)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	id, err := c.LookupID(ctx, LookupCriterion{Kind: LookupPhone, Value: "41791234567"})
	require.NoError(t, err)
	assert.Equal(t, crypto.Identity("ECHOECHO"), id)

	id, err = c.LookupID(ctx, LookupCriterion{Kind: LookupEmail, Value: "test@example.com"})
	require.NoError(t, err)
	assert.Equal(t, crypto.Identity("ECHOECHO"), id)

	_, err = c.LookupID(ctx, LookupCriterion{Kind: "fax", Value: "1"})
	assert.Error(t, err)

	credits, err := c.Credits(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 100, credits)
}

func TestStatusMapping(t *testing.T) {
	g, c := newFakeGateway(t)
	ctx := context.Background()

	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrBadCredentials},
		{http.StatusPaymentRequired, ErrNoCredits},
		{http.StatusNotFound, ErrIDNotFound},
		{http.StatusRequestEntityTooLarge, ErrMessageTooLong},
		{http.StatusInternalServerError, ErrServerError},
		{http.StatusTeapot, ErrUnexpectedStatus},
		{http.StatusBadRequest, ErrUnexpectedStatus},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			g.mu.Lock()
			g.status = tt.status
			g.mu.Unlock()
			_, err := c.Credits(ctx)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	g.mu.Lock()
	g.status = http.StatusBadRequest
	g.mu.Unlock()
	_, err := c.UploadBlob(ctx, []byte{1})
	assert.ErrorIs(t, err, ErrBadBlob)
}

func TestWrongSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewClient(interfaces.TransportConfig{
		BaseURL: srv.URL, From: testFrom, Secret: "wrong", Timeout: time.Second,
	}, nil)
	require.NoError(t, err)
	_, err = c.Credits(context.Background())
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestMapStatus(t *testing.T) {
	assert.NoError(t, mapStatus(http.StatusOK, nil))
	assert.ErrorIs(t, mapStatus(http.StatusBadRequest, ErrBadBlob), ErrBadBlob)
}
