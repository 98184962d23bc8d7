// internal/core/errors.go
package core

import (
	"errors"
	"fmt"
)

// Error represents a structured error with code and optional cause.
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:       base.Code,
		Message:    base.Message,
		Suggestion: base.Suggestion,
		Cause:      cause,
	}
}

// NewError creates an error with the base code and a specific message.
func NewError(base *Error, format string, args ...any) *Error {
	return &Error{
		Code:       base.Code,
		Message:    fmt.Sprintf(format, args...),
		Suggestion: base.Suggestion,
	}
}

// WithSuggestion returns a copy of e carrying a human-readable hint.
func (e *Error) WithSuggestion(s string) *Error {
	c := *e
	c.Suggestion = s
	return &c
}

// Predefined errors
var (
	// Soft: the provider answered, it just cannot help with this request.
	ErrNotSupported        = &Error{Code: "NOT_SUPPORTED", Message: "data type not supported by provider"}
	ErrExchangeUnsupported = &Error{Code: "EXCHANGE_UNSUPPORTED", Message: "exchange not supported by provider"}
	ErrNoData              = &Error{Code: "NO_DATA_FOUND", Message: "no data available"}
	ErrSymbolNotFound      = &Error{Code: "SYMBOL_NOT_FOUND", Message: "symbol not found"}

	// Hard: fallback-eligible throttling and credential problems.
	ErrRateLimitExceeded = &Error{Code: "RATE_LIMIT_EXCEEDED", Message: "rate limit exceeded"}
	ErrQuotaExceeded     = &Error{Code: "QUOTA_EXCEEDED", Message: "daily quota exceeded"}
	ErrAPIKeyInvalid     = &Error{Code: "API_KEY_INVALID", Message: "api key invalid or missing"}

	// Transport or unexpected failures.
	ErrProviderFailed = &Error{Code: "API_ERROR", Message: "provider request failed"}

	ErrAllSourcesFailed = &Error{Code: "ALL_SOURCES_FAILED", Message: "all data sources failed"}

	// Request errors
	ErrInvalidRequest = &Error{Code: "INVALID_REQUEST", Message: "invalid request"}
	ErrUnauthorized   = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid api key"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)

// OutcomeKind classifies a failed provider call.
type OutcomeKind string

const (
	OutcomeSuccess   OutcomeKind = "success"
	OutcomeSoft      OutcomeKind = "soft_error"
	OutcomeHard      OutcomeKind = "hard_error"
	OutcomeException OutcomeKind = "exception"
)

var (
	softCodes = map[string]bool{
		ErrNotSupported.Code:        true,
		ErrExchangeUnsupported.Code: true,
		ErrNoData.Code:              true,
		ErrSymbolNotFound.Code:      true,
	}
	hardCodes = map[string]bool{
		ErrRateLimitExceeded.Code: true,
		ErrQuotaExceeded.Code:     true,
		ErrAPIKeyInvalid.Code:     true,
	}
)

// Classify maps err onto the outcome taxonomy. Anything that is not a
// coded soft or hard error is an exception.
func Classify(err error) OutcomeKind {
	if err == nil {
		return OutcomeSuccess
	}
	code := Code(err)
	switch {
	case softCodes[code]:
		return OutcomeSoft
	case hardCodes[code]:
		return OutcomeHard
	default:
		return OutcomeException
	}
}

// Code returns the code of the first *Error in err's chain, or "" if none.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Suggestion returns the hint carried by err, if any.
func Suggestion(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Suggestion
	}
	return ""
}
