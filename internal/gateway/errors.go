package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionExpired means the backend rejected the stored tokens and the refresh failed.
	// Stored tokens are cleared before it is returned; the operator has to sign in again.
	ErrSessionExpired = errors.New("session expired, login required")
	ErrTransport      = errors.New("backend unreachable")
)

// APIError is a non-2xx answer (or a success:false envelope) from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}
