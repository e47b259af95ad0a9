package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes the backend attaches under extensions.code.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
)

// APIErrorItem is one entry of a Directus error list.
type APIErrorItem struct {
	Message    string             `json:"message"`
	Extensions APIErrorExtensions `json:"extensions"`
}

// APIErrorExtensions carries the machine-readable code of an error item.
type APIErrorExtensions struct {
	Code string `json:"code"`
}

// APIError is a classified remote failure. It carries the HTTP status and
// the structured error list so callers can distinguish a permanently
// rejected session from a transient fault.
type APIError struct {
	StatusCode int
	Errors     []APIErrorItem
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		msgs := make([]string, 0, len(e.Errors))
		for _, item := range e.Errors {
			msgs = append(msgs, item.Message)
		}
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, strings.Join(msgs, "; "))
	}
	return fmt.Sprintf("API error (status %d)", e.StatusCode)
}

// HasCode reports whether any error item carries the given extensions code.
func (e *APIError) HasCode(code string) bool {
	for _, item := range e.Errors {
		if item.Extensions.Code == code {
			return true
		}
	}
	return false
}

// IsUnauthorized reports whether err represents a 401-equivalent rejection
// that a token refresh could plausibly fix.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized ||
		apiErr.HasCode(CodeInvalidToken) ||
		apiErr.HasCode(CodeTokenExpired) ||
		apiErr.HasCode(CodeInvalidCredentials)
}

// newAPIError builds an [APIError] from a response body, tolerating
// non-JSON payloads.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var envelope struct {
		Errors []APIErrorItem `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Errors = envelope.Errors
	}

	return apiErr
}
