package domain

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is against the typed errors below.
var (
	ErrTransport       = errors.New("transport error")
	ErrProtocol        = errors.New("protocol error")
	ErrAuth            = errors.New("authorization error")
	ErrNotFound        = errors.New("no agent discovered")
	ErrInvalidArgument = errors.New("invalid argument")
)

// TransportError means the round trip did not complete successfully:
// connection failure, timeout, or a non-success status outside the auth range.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Timeout    bool
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: directory returned status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.Timeout:
		return fmt.Sprintf("%s: request timed out: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ProtocolError means the response arrived but could not be understood.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// AuthError means the directory rejected the presented credential (401/403).
type AuthError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: credential rejected with status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// NotFoundError is raised by callers that need at least one match.
// The client itself returns an empty slice instead.
type NotFoundError struct {
	Capability string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no agent discovered for capability: %s", e.Capability)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IsAuthStatus reports whether a status code is an authorization failure.
func IsAuthStatus(code int) bool {
	return code == 401 || code == 403
}

// Kind classifies err for log fields and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrProtocol):
		return "protocol"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}
