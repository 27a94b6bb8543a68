package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable machine-readable error codes returned to clients.
const (
	CodeMissingHeader  = "MISSING_HEADER"
	CodeInvalidKey     = "INVALID_KEY"
	CodeIPBlocked      = "IP_BLOCKED"
	CodeAlreadyBound   = "KEY_ALREADY_BOUND"
	CodeRateLimited    = "RATE_LIMIT_EXCEEDED"
	CodeEmailDup       = "EMAIL_DUP"
	CodeNameDup        = "NAME_DUP"
	CodeItemDup        = "ITEM_DUP"
	CodeCustNotFound   = "CUST_NOT_FOUND"
	CodeProdNotFound   = "PROD_NOT_FOUND"
	CodeOrderNotFound  = "ORDER_NOT_FOUND"
	CodeValidation     = "VALIDATION_ERROR"
	CodeDBIntegrity    = "DB_INTEGRITY"
	CodeIDGenExhausted = "ID_GENERATION_EXHAUSTED"
)

// Error is a typed application error carrying a stable code and the HTTP
// status it maps to at the boundary. Storage and auth layers return these
// instead of raw driver or transport errors.
type Error struct {
	Code    string
	Status  int
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// Is matches two *Error values by code, so callers can use errors.Is with
// sentinel-style comparisons.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func newf(code string, status int, format string, args ...any) *Error {
	return &Error{Code: code, Status: status, Message: fmt.Sprintf(format, args...)}
}

// Conflict signals a uniqueness violation (409).
func Conflict(code, format string, args ...any) *Error {
	return newf(code, http.StatusConflict, format, args...)
}

// NotFound signals a missing referenced entity (404).
func NotFound(code, format string, args ...any) *Error {
	return newf(code, http.StatusNotFound, format, args...)
}

// Validation signals a request constraint violation (400).
func Validation(format string, args ...any) *Error {
	return newf(CodeValidation, http.StatusBadRequest, format, args...)
}

// Unauthorized signals a failed authentication attempt (401).
func Unauthorized(code, format string, args ...any) *Error {
	return newf(code, http.StatusUnauthorized, format, args...)
}

// Forbidden signals a denied-but-authenticated class of failure (403).
func Forbidden(code, format string, args ...any) *Error {
	return newf(code, http.StatusForbidden, format, args...)
}

// IDGenExhausted signals that bounded unique-ID generation ran out of
// attempts. Non-retryable for the request; points at a capacity problem.
func IDGenExhausted(entity string) *Error {
	return newf(CodeIDGenExhausted, http.StatusInternalServerError,
		"could not generate a unique %s id", entity)
}

// Wrap attaches an underlying cause while keeping code and status.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.err = err
	return &cp
}

// CodeOf extracts the machine-readable code from err, or "" when err is not
// an application error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// StatusOf maps err to an HTTP status, defaulting to 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
