package services

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrorCode classifies a failure raised by a provider adapter.
type ErrorCode string

const (
	// ErrInvalidSymbol means the ticker is malformed or unrecognized.
	ErrInvalidSymbol ErrorCode = "INVALID_SYMBOL"
	// ErrNetwork means connectivity failed or retries were exhausted.
	ErrNetwork ErrorCode = "NETWORK_ERROR"
	// ErrAPI means a non-success HTTP status or a provider-reported
	// error, including quota exhaustion.
	ErrAPI ErrorCode = "API_ERROR"
	// ErrDataFormat means the payload was missing its expected shape.
	ErrDataFormat ErrorCode = "DATA_FORMAT_ERROR"
	// ErrConfiguration means a required credential is absent. Fatal at
	// startup, never raised per-request.
	ErrConfiguration ErrorCode = "CONFIGURATION_ERROR"
)

// Error is the typed failure propagated from adapters to the
// aggregator and, ultimately, the API layer. The classification must
// survive wrapping so the caller can map it to a user-facing message.
type Error struct {
	Code ErrorCode
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on classification: two service errors are
// equivalent when their codes match.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a classified error.
func NewError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// WrapError classifies an underlying error.
func WrapError(code ErrorCode, msg string, err error) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}

// CodeOf extracts the classification from an error chain, defaulting to
// NETWORK_ERROR for unclassified failures.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrNetwork
}

// EnsureCode returns err unchanged when it already carries a
// classification, otherwise wraps it with the fallback code. Adapters
// use it after retry exhaustion so plain transport errors surface as
// NETWORK_ERROR.
func EnsureCode(err error, fallback ErrorCode, msg string) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return WrapError(fallback, msg, err)
}

// IsCode reports whether err carries the given classification.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// symbolPattern is deliberately conservative: uppercase letters, digits
// and dot, 1-10 characters. Class shares like "BRK.B" pass.
var symbolPattern = regexp.MustCompile(`^[A-Z0-9.]{1,10}$`)

// ValidateSymbol rejects malformed tickers before any network call.
func ValidateSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return NewError(ErrInvalidSymbol, fmt.Sprintf("invalid stock symbol %q", symbol))
	}
	return nil
}
