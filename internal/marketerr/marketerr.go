// Package marketerr classifies market-data failures into a fixed set of kinds.
//
// Errors are created where the failure happens, passed through decorators untouched,
// and turned into an HTTP status only at the outermost boundary.
package marketerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the failure class of an Error.
type Kind string

const (
	KindNetwork        Kind = "network"
	KindQuotaExceeded  Kind = "quota_exceeded"
	KindSymbolNotFound Kind = "symbol_not_found"
	KindProviderConfig Kind = "provider_config"
	KindUnknown        Kind = "unknown"
)

// Error is a classified market-data failure.
type Error struct {
	Kind      Kind
	Message   string
	Retryable bool
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of any kind.
func New(kind Kind, message string, retryable bool, cause error) *Error {
	return &Error{Kind: kind, Message: message, Retryable: retryable, Err: cause}
}

// Network reports a transport failure. Always retryable.
func Network(message string, cause error) *Error {
	if message == "" {
		message = "network error while contacting market data provider"
	}
	return New(KindNetwork, message, true, cause)
}

// QuotaExceeded reports an upstream rate limit. Retryable after backoff.
func QuotaExceeded(message string) *Error {
	if message == "" {
		message = "request quota exceeded"
	}
	return New(KindQuotaExceeded, message, true, nil)
}

// SymbolNotFound reports an unknown or malformed ticker symbol.
func SymbolNotFound(symbol, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("symbol %q not found", symbol)
	}
	return New(KindSymbolNotFound, message, false, nil)
}

// ProviderConfig reports a misconfigured provider or adapter.
func ProviderConfig(message string) *Error {
	if message == "" {
		message = "market data provider is not configured correctly"
	}
	return New(KindProviderConfig, message, false, nil)
}

// From returns err as an *Error. Errors outside the taxonomy are wrapped as KindUnknown.
// A nil err yields nil.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var me *Error
	if errors.As(err, &me) {
		return me
	}
	return New(KindUnknown, err.Error(), false, err)
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return From(err).Kind == kind
}

// HTTPStatus maps err to the status code used at HTTP boundaries.
func HTTPStatus(err error) int {
	switch From(err).Kind {
	case KindNetwork:
		return http.StatusServiceUnavailable
	case KindQuotaExceeded:
		return http.StatusTooManyRequests
	case KindSymbolNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Payload is the wire form of an Error.
type Payload struct {
	Type      Kind   `json:"type"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Serialize converts any error to its wire form.
func Serialize(err error) Payload {
	me := From(err)
	if me == nil {
		me = New(KindUnknown, "unknown error", false, nil)
	}
	return Payload{Type: me.Kind, Message: me.Message, Retryable: me.Retryable}
}
