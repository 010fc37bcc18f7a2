package blobstore

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/msgcrypt/blob"
	"github.com/opd-ai/msgcrypt/limits"
)

// uploadOverhead covers the multipart framing around the blob part.
const uploadOverhead = 64 * 1024

// Server exposes a Store over HTTP.
type Server struct {
	store Store
	// credentials maps API identity to secret; empty means no authentication
	credentials map[string]string
}

// NewServer creates a Server for store. credentials maps each accepted API
// identity to its secret; a nil map disables authentication.
func NewServer(store Store, credentials map[string]string) *Server {
	return &Server{store: store, credentials: credentials}
}

// Router returns the HTTP routes of the service.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.authenticate)
	r.HandleFunc("/upload_blob", s.HandleUpload()).Methods(http.MethodPost)
	r.HandleFunc("/blobs/{id}", s.HandleDownload()).Methods(http.MethodGet)
	return r
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.credentials) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		from := r.URL.Query().Get("from")
		want, ok := s.credentials[from]
		got := r.URL.Query().Get("secret")
		if !ok || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
			logrus.WithFields(logrus.Fields{
				"function": "authenticate",
				"from":     from,
				"path":     r.URL.Path,
			}).Warn("Rejected blob request with bad credentials")
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleUpload stores the multipart field "blob" and answers with its hex ID.
func (s *Server) HandleUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limits.MaxEncryptedBlob+uploadOverhead)

		data, err := readBlobField(r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "blob too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "missing blob field", http.StatusBadRequest)
			return
		}

		id, err := s.store.Put(r.Context(), data)
		switch {
		case errors.Is(err, limits.ErrMessageEmpty):
			http.Error(w, "empty blob", http.StatusBadRequest)
			return
		case errors.Is(err, limits.ErrMessageTooLarge):
			http.Error(w, "blob too large", http.StatusRequestEntityTooLarge)
			return
		case err != nil:
			logrus.WithFields(logrus.Fields{
				"function": "HandleUpload",
				"error":    err.Error(),
			}).Error("Failed to store blob")
			http.Error(w, "store failure", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, id.String())
	}
}

// HandleDownload returns the raw bytes of a stored blob.
func (s *Server) HandleDownload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := blob.ParseID(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "bad blob id", http.StatusBadRequest)
			return
		}

		data, err := s.store.Get(r.Context(), id)
		if errors.Is(err, ErrBlobNotFound) {
			http.Error(w, "blob not found", http.StatusNotFound)
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "HandleDownload",
				"blob_id":  id.String(),
				"error":    err.Error(),
			}).Error("Failed to load blob")
			http.Error(w, "store failure", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(data)
	}
}

// readBlobField returns the content of the first multipart part named
// "blob", with or without a file name.
func readBlobField(r *http.Request) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return nil, errors.New("not a multipart request")
	}
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == "blob" {
			return io.ReadAll(part)
		}
	}
}
