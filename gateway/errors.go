package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/opd-ai/msgcrypt/interfaces"
)

var (
	// ErrBadSenderOrRecipient indicates an invalid sender or recipient identity.
	ErrBadSenderOrRecipient = errors.New("bad sender or recipient")
	// ErrBadCredentials indicates a wrong API identity or secret.
	ErrBadCredentials = errors.New("bad API credentials")
	// ErrNoCredits indicates the account has no credits left.
	ErrNoCredits = errors.New("no credits remaining")
	// ErrIDNotFound indicates the looked up identity does not exist. It
	// matches interfaces.ErrNotFound.
	ErrIDNotFound = fmt.Errorf("gateway: %w", interfaces.ErrNotFound)
	// ErrMessageTooLong indicates a message above the gateway size limit.
	ErrMessageTooLong = errors.New("message too long")
	// ErrServerError indicates a temporary gateway failure.
	ErrServerError = errors.New("gateway server error")
	// ErrBadBlob indicates the gateway rejected an uploaded blob.
	ErrBadBlob = errors.New("bad blob")
	// ErrUnexpectedStatus indicates a status code with no specific meaning.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrBadResponse indicates a 200 response whose body could not be parsed.
	ErrBadResponse = errors.New("malformed gateway response")
)

// mapStatus converts a response status to an error. badRequest is the
// meaning of 400 for the calling endpoint; nil means no specific meaning.
func mapStatus(code int, badRequest error) error {
	switch code {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		if badRequest != nil {
			return badRequest
		}
	case http.StatusUnauthorized:
		return ErrBadCredentials
	case http.StatusPaymentRequired:
		return ErrNoCredits
	case http.StatusNotFound:
		return ErrIDNotFound
	case http.StatusRequestEntityTooLarge:
		return ErrMessageTooLong
	case http.StatusInternalServerError:
		return ErrServerError
	}
	return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, code, http.StatusText(code))
}
