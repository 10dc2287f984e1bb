// Package apierror classifies everything that can go wrong when talking to
// the POS backend: transport failures, server-rejected calls (4xx/5xx with
// the backend's {detail} envelope), and purely local validation failures
// that must never reach the network.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a server-rejected call: the backend answered with a 4xx/5xx
// and (usually) a {detail} body.
type APIError struct {
	StatusCode int
	Detail     string
}

func New(status int, detail string) *APIError {
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Detail: detail}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Detail)
}

// TransportError is a network-level failure: the request never produced an
// HTTP response (DNS, refused connection, timeout, cancelled context).
type TransportError struct {
	Op  string
	Err error
}

func Transport(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: backend unreachable: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError wraps field errors from client-side form validation.
type ValidationError struct {
	Detail string
	Fields map[string]string
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Detail, e.Fields)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// IsUnauthorized reports a 401, meaning the session token is missing or expired.
func IsUnauthorized(err error) bool { return IsStatus(err, http.StatusUnauthorized) }

// IsTransport reports whether err is a network-level failure.
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
