package bond

import (
	"errors"
	"fmt"
)

// Kind classifies client errors so callers can react without string matching.
type Kind string

const (
	// KindInvalidArgument is a client-side validation failure; the request
	// never reached the network.
	KindInvalidArgument Kind = "invalid_argument"

	// KindAuth means the bridge rejected the token (HTTP 401). Never retried.
	KindAuth Kind = "auth"

	// KindNotFound means the bridge does not know the device or resource.
	KindNotFound Kind = "not_found"

	// KindAction means the bridge rejected a well-formed action (other 4xx).
	KindAction Kind = "action"

	// KindBridgeUnavailable covers network failures, timeouts and 5xx
	// responses after retries were exhausted.
	KindBridgeUnavailable Kind = "bridge_unavailable"
)

// Error is the typed error the client returns for every failure mode.
type Error struct {
	Kind    Kind
	Message string
	Status  int // HTTP status when the bridge answered, 0 otherwise
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// InvalidArgumentf builds a client-side validation error.
func InvalidArgumentf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err. Errors that did not originate from the
// client are classified as bridge_unavailable so no failure is ever
// reported without a kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindBridgeUnavailable
}
