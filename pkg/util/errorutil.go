package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewNotConfigured signals missing integration settings for a workspace.
// Surfaced as 404 with a remediation hint.
func NewNotConfigured(message string) error {
	return NewDomainError("NOT_CONFIGURED", message, http.StatusNotFound, map[string]any{
		"hint": "configure the Tiny integration token for this workspace first",
	})
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewUpstreamRejected wraps a non-2xx answer from the ERP. The upstream status
// and body travel in Details; never downgraded to success.
func NewUpstreamRejected(upstreamStatus int, body string) error {
	return NewDomainError("UPSTREAM_REJECTED", "upstream ERP rejected the request", http.StatusBadGateway, map[string]any{
		"upstream_status": upstreamStatus,
		"upstream_body":   body,
	})
}

// NewOAuthExchangeFailed reports a failed token exchange. Not retried:
// credentials are either valid or not.
func NewOAuthExchangeFailed(upstreamStatus int, body string) error {
	return NewDomainError("OAUTH_EXCHANGE_FAILED", "oauth token exchange failed", http.StatusBadGateway, map[string]any{
		"upstream_status": upstreamStatus,
		"upstream_body":   body,
	})
}

// NewMalformedJSON reports an unparseable JSON body; the raw body is preserved
// in Details for logging.
func NewMalformedJSON(body string, err error) error {
	return &DomainError{
		Code:       "MALFORMED_JSON",
		Message:    "unexpected response shape from upstream",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"body": body},
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
