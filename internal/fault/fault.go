// Package fault defines structured error kinds for provider failures.
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable failure category.
type Code string

// Permanent categories. A provider returning one of these will not recover
// by retrying the same call.
const (
	CodeAuth          Code = "AUTHENTICATION_FAILED"
	CodeBadRequest    Code = "BAD_REQUEST"
	CodeQuota         Code = "QUOTA_EXCEEDED"
	CodeContentPolicy Code = "CONTENT_POLICY_VIOLATION"
	CodeContextLength Code = "CONTEXT_LENGTH_EXCEEDED"
	CodeNotFound      Code = "NOT_FOUND"
	CodePermission    Code = "PERMISSION_DENIED"
)

// Transient categories. The same call may succeed on a later attempt.
const (
	CodeConnection  Code = "CONNECTION_FAILED"
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeRateLimited Code = "RATE_LIMITED"
	CodeInternal    Code = "INTERNAL_SERVER_ERROR"
	CodeTimeout     Code = "TIMEOUT"
)

// Error carries a failure category alongside the usual message/cause pair.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an Error around an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Deepest returns the innermost *Error in err's chain. When a provider
// wraps one categorized failure in another, the wrapped cause wins.
func Deepest(err error) (*Error, bool) {
	var deepest *Error
	for err != nil {
		if fe, ok := err.(*Error); ok {
			deepest = fe
		}
		err = errors.Unwrap(err)
	}
	return deepest, deepest != nil
}

// CodeForStatus maps an HTTP status to a failure category. Used by providers
// wrapping SDK errors that expose only a status code.
func CodeForStatus(status int) (Code, bool) {
	switch status {
	case http.StatusUnauthorized:
		return CodeAuth, true
	case http.StatusForbidden:
		return CodePermission, true
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		return CodeBadRequest, true
	case http.StatusNotFound:
		return CodeNotFound, true
	case http.StatusPaymentRequired:
		return CodeQuota, true
	case http.StatusTooManyRequests:
		return CodeRateLimited, true
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return CodeTimeout, true
	case http.StatusInternalServerError:
		return CodeInternal, true
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return CodeUnavailable, true
	default:
		return "", false
	}
}

// --- Common constructors ---

// ConnectionFailed reports an unreachable service.
func ConnectionFailed(service string, cause error) *Error {
	return Wrap(CodeConnection, fmt.Sprintf("unable to connect to %s", service), cause)
}

// Unavailable reports a temporarily unusable service.
func Unavailable(service string, cause error) *Error {
	return Wrap(CodeUnavailable, fmt.Sprintf("%s is temporarily unavailable", service), cause)
}

// Timeout reports an operation that exceeded its deadline.
func Timeout(operation string, cause error) *Error {
	return Wrap(CodeTimeout, fmt.Sprintf("%s timed out", operation), cause)
}

// Unauthorized reports rejected credentials.
func Unauthorized(service string, cause error) *Error {
	return Wrap(CodeAuth, fmt.Sprintf("%s rejected credentials", service), cause)
}

// InvalidRequest reports a request the provider will never accept.
func InvalidRequest(reason string, cause error) *Error {
	return Wrap(CodeBadRequest, reason, cause)
}
