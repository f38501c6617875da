package directory

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the directory service. Retryable is
// set for transient failures (5xx, network errors surface separately); 4xx
// responses are fatal and surfaced to the caller.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("directory: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed if repeated
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500
}

// IsNotFound reports whether the error is a directory 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsRetryable reports whether the error is worth retrying: network-level
// failures and 5xx responses qualify, 4xx responses do not.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	// Network-level errors (connection refused, timeouts) have no status.
	return err != nil
}
