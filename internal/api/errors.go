package api

import (
	"errors"
	"fmt"
)

// ErrNoUploadURL is returned when the presign response carries no uploadUrl.
var ErrNoUploadURL = errors.New("no pre-signed URL received")

// DefaultSubmitError is shown when the API reports a failure without a message.
const DefaultSubmitError = "Failed to create post"

// TransportError is a network failure or a non-success HTTP status.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError is a malformed response envelope.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ServerError is a failure reported by the API itself.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// reachability reports whether err says anything about the API being down.
// Server-reported failures mean the API answered.
func reachability(err error) error {
	var te *TransportError
	var pe *ParseError
	if errors.As(err, &te) || errors.As(err, &pe) {
		return err
	}
	return nil
}
