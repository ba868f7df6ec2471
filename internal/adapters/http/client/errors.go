package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUploadFailed is returned for any failed upload. The server's detail is
// deliberately not surfaced.
var ErrUploadFailed = errors.New("Upload failed") //nolint:staticcheck // user-facing text

// RequestError is the single failure kind callers see. Status is 0 when the
// request never got a response.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Err }

// newStatusError builds the error for a non-2xx response: the raw body, or a
// status-based fallback when the body is empty.
func newStatusError(status int, body []byte) *RequestError {
	msg := string(body)
	if len(body) == 0 {
		msg = fmt.Sprintf("Request failed: %d", status)
	}
	return &RequestError{Status: status, Message: msg}
}

func newTransportError(err error) *RequestError {
	return &RequestError{Message: err.Error(), Err: err}
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Status == http.StatusUnauthorized
}

// errorType buckets a status code for metrics.
func errorType(status int) string {
	switch {
	case status == 0:
		return "transport"
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusTooManyRequests:
		return "rate_limit"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "unauthorized"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= http.StatusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}
