package cmrclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidBaseURL is returned when a base URL option is invalid.
	ErrInvalidBaseURL = errors.New("cmrclient: invalid base URL")
	// ErrNilHTTPClient indicates a nil HTTP client was provided.
	ErrNilHTTPClient = errors.New("cmrclient: http client cannot be nil")
)

// APIError represents a CMR error payload or HTTP failure.
type APIError struct {
	Status int      `json:"status"`
	Errors []string `json:"errors"`
	Raw    []byte   `json:"-"`
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Raw: body}
	if err := json.Unmarshal(body, apiErr); err != nil || len(apiErr.Errors) == 0 {
		// Fallback to plain message.
		if msg := strings.TrimSpace(string(body)); msg != "" {
			apiErr.Errors = []string{msg}
		}
	}
	apiErr.Status = status
	return apiErr
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Errors) == 0 {
		return fmt.Sprintf("cmrclient: api error status=%d", e.Status)
	}
	return fmt.Sprintf("cmrclient: %s (status=%d)", strings.Join(e.Errors, "; "), e.Status)
}

// Temporary reports whether the error may be retried.
func (e *APIError) Temporary() bool {
	if e == nil {
		return false
	}
	return e.Status >= 500 && e.Status < 600
}

// Unauthorized reports whether the failure calls for re-authentication.
func (e *APIError) Unauthorized() bool {
	if e == nil {
		return false
	}
	return e.Status == 401 || e.Status == 403
}
