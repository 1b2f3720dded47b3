package promidas

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrorKind is a coarse classification of a fetch failure.
type ErrorKind string

const (
	KindNetwork  ErrorKind = "network"
	KindTimeout  ErrorKind = "timeout"
	KindAbort    ErrorKind = "abort"
	KindProtocol ErrorKind = "protocol"
	KindUnknown  ErrorKind = "unknown"
)

// FetchError is the failure surfaced by a Source. It carries a human-readable
// message, an optional HTTP-like status, a coarse kind, and an optional
// machine code.
type FetchError struct {
	Message string
	Status  int // 0 when not applicable
	Kind    ErrorKind
	Code    string // machine code; "" when not applicable
	cause   error
}

// NewFetchError wraps cause as a FetchError. A nil cause is allowed when only
// status/message describe the failure.
func NewFetchError(cause error, status int, kind ErrorKind, code string) *FetchError {
	fe := &FetchError{
		Status: status,
		Kind:   kind,
		Code:   code,
		cause:  cause,
	}
	if cause != nil {
		fe.Message = cause.Error()
	}
	return fe
}

func (e *FetchError) Error() string {
	parts := make([]string, 0, 4)
	if e.Kind != "" && e.Kind != KindUnknown {
		parts = append(parts, string(e.Kind))
	}
	if e.Status != 0 {
		s := fmt.Sprintf("%d", e.Status)
		if text := http.StatusText(e.Status); text != "" {
			s += " " + text
		}
		parts = append(parts, s)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if len(parts) == 0 {
		return "fetch failed"
	}
	return "fetch failed: " + strings.Join(parts, ": ")
}

func (e *FetchError) Unwrap() error { return e.cause }

// asFetchError normalizes an arbitrary Source error into a *FetchError,
// classifying well-known causes. Errors that already are a *FetchError pass
// through unchanged.
func asFetchError(err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	kind := KindUnknown
	var nerr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindAbort
	case errors.As(err, &nerr):
		if nerr.Timeout() {
			kind = KindTimeout
		} else {
			kind = KindNetwork
		}
	}
	return NewFetchError(err, 0, kind, "")
}
