package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches any *TransportError.
	ErrTransport = errors.New("ledger transport failure")
	// ErrProtocol matches any *ProtocolError.
	ErrProtocol = errors.New("ledger protocol failure")
	// ErrRejected matches any *ValidationError.
	ErrRejected = errors.New("ledger rejected request")
)

// TransportError reports that the ledger service could not be reached,
// including request timeouts.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ProtocolError reports a read that returned a non-success status or a body
// that could not be decoded.
type ProtocolError struct {
	Op         string
	StatusCode int
	Err        error // decode error, nil for status failures
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: decode response (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// ValidationError reports a write the ledger service refused.
// Message is the response body as sent by the service.
type ValidationError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrRejected }
