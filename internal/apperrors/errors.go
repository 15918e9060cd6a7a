// Package apperrors defines the closed set of failure kinds produced while
// resolving a rate and the outcome each kind maps to at the HTTP boundary.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure. The set is closed; every Kind maps to exactly one Outcome.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindRateLimited
	KindNotFound
	KindProvider
	KindCache
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindNotFound:
		return "not_found"
	case KindProvider:
		return "provider"
	case KindCache:
		return "cache"
	case KindStoreUnavailable:
		return "store_unavailable"
	default:
		return "internal"
	}
}

// Machine readable codes. Provider subtypes share KindProvider.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeTooManyRequests  = "TOO_MANY_REQUESTS"
	CodeRateNotFound     = "RATE_NOT_FOUND"
	CodeNetwork          = "NETWORK_ERROR"
	CodeInvalidResponse  = "INVALID_RESPONSE"
	CodeUpstreamLimit    = "RATE_LIMIT_EXCEEDED"
	CodeInvalidCurrency  = "INVALID_CURRENCY"
	CodeDateOutOfRange   = "DATE_OUT_OF_RANGE"
	CodeAPI              = "API_ERROR"
	CodeCache            = "CACHE_ERROR"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// Error is the typed failure value returned by the core components.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind and, when the target sets one, by Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Sentinels for errors.Is checks against a whole kind.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrAuth             = &Error{Kind: KindAuth}
	ErrRateLimited      = &Error{Kind: KindRateLimited}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrProvider         = &Error{Kind: KindProvider}
	ErrCache            = &Error{Kind: KindCache}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
)

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, CodeValidation, message)
}

func NotFound(message string, err error) *Error {
	return Wrap(KindNotFound, CodeRateNotFound, message, err)
}

// Provider builds a provider failure with one of the provider codes.
func Provider(code, message string, err error) *Error {
	return Wrap(KindProvider, code, message, err)
}

func Cache(message string, err error) *Error {
	return Wrap(KindCache, CodeCache, message, err)
}

func StoreUnavailable(message string, err error) *Error {
	return Wrap(KindStoreUnavailable, CodeStoreUnavailable, message, err)
}

// As extracts an *Error from err. Foreign errors become KindInternal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(KindInternal, CodeInternal, "internal error", err)
}

// CodeOf returns the code carried by err, or CodeInternal.
func CodeOf(err error) string {
	return As(err).Code
}

// Outcome is the externally observable category of a failure.
type Outcome struct {
	Status int
	Title  string
}

var (
	OutcomeBadRequest         = Outcome{Status: http.StatusBadRequest, Title: "Bad Request"}
	OutcomeUnauthorized       = Outcome{Status: http.StatusUnauthorized, Title: "Unauthorized"}
	OutcomeTooManyRequests    = Outcome{Status: http.StatusTooManyRequests, Title: "Too Many Requests"}
	OutcomeNotFound           = Outcome{Status: http.StatusNotFound, Title: "Rate not found"}
	OutcomeServiceUnavailable = Outcome{Status: http.StatusServiceUnavailable, Title: "Service Unavailable"}
	OutcomeInternal           = Outcome{Status: http.StatusInternalServerError, Title: "Internal server error"}
)

// OutcomeOf maps err to its outcome. The mapping is stable per Kind.
func OutcomeOf(err error) Outcome {
	switch As(err).Kind {
	case KindValidation:
		return OutcomeBadRequest
	case KindAuth:
		return OutcomeUnauthorized
	case KindRateLimited:
		return OutcomeTooManyRequests
	case KindNotFound:
		return OutcomeNotFound
	case KindStoreUnavailable:
		return OutcomeServiceUnavailable
	default:
		return OutcomeInternal
	}
}
