package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
)

// FallbackMessage is shown when a failed envelope carries no message
const FallbackMessage = "Unknown error"

// Envelope is the uniform wrapper around every backend response.
// Data is only meaningful when Success is true.
type Envelope struct {
	Success bool            `json:"success"`
	Text    string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Message returns the backend message, falling back to "Unknown error" for a
// failed envelope that has none.
func (e Envelope) Message() string {
	if e.Text == "" && !e.Success {
		return FallbackMessage
	}
	return e.Text
}

// HasData reports whether the envelope carries a data payload
func (e Envelope) HasData() bool {
	return len(e.Data) > 0
}

// DecodeData unmarshals the data payload into v. A missing payload leaves v untouched.
func (e Envelope) DecodeData(v any) error {
	if !e.HasData() {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// DecodeEnvelope normalizes a response body into an Envelope. The body is
// either a JSON object or a JSON string whose content is that object; some
// CGI handlers double-encode their output.
func DecodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return env, errors.New("empty response body")
	}

	if body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return env, err
		}
		body = bytes.TrimSpace([]byte(inner))
	}

	if len(body) == 0 || body[0] != '{' {
		return env, errors.New("response is not a JSON object")
	}

	if err := json.Unmarshal(body, &env); err != nil {
		return env, err
	}

	if bytes.Equal(env.Data, []byte("null")) {
		env.Data = nil
	}

	return env, nil
}
