package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the outer document every API route answers with. Body holds
// the inner payload after the second decoding step.
type Envelope struct {
	StatusCode int
	Body       json.RawMessage
}

// Failed reports whether the envelope carries a failure status.
func (e *Envelope) Failed() bool {
	return e.StatusCode >= 400
}

// Decode unmarshals the inner payload into v.
func (e *Envelope) Decode(v any) error {
	return json.Unmarshal(e.Body, v)
}

// IsArray reports whether the inner payload is a JSON array.
func (e *Envelope) IsArray() bool {
	b := bytes.TrimSpace(e.Body)
	return len(b) > 0 && b[0] == '['
}

type rawEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
}

// DecodeEnvelope parses {statusCode?, body}. body is normally a string that
// itself holds JSON; an already-decoded JSON value is accepted as well.
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	var outer rawEnvelope
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	body := bytes.TrimSpace(outer.Body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, errors.New("envelope has no body")
	}

	if body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return nil, fmt.Errorf("decode body string: %w", err)
		}
		if !json.Valid([]byte(inner)) {
			return nil, fmt.Errorf("body string is not JSON: %.40q", inner)
		}
		body = []byte(inner)
	}

	return &Envelope{StatusCode: outer.StatusCode, Body: body}, nil
}
