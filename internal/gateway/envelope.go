package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// envelope is the backend's {success, message, data} wrapper. Some endpoints answer with a
// bare payload instead; decodeBody accepts both so services only ever see the payload.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func parseEnvelope(raw []byte) (envelope, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return envelope{}, false
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil || env.Success == nil {
		return envelope{}, false
	}

	return env, true
}

func decodeBody(status int, raw []byte, out any) error {
	payload := bytes.TrimSpace(raw)

	if env, ok := parseEnvelope(payload); ok {
		if !*env.Success {
			return &APIError{StatusCode: status, Message: env.message()}
		}
		payload = bytes.TrimSpace(env.Data)
	}

	if out == nil || len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return nil
}

func decodeError(status int, raw []byte) error {
	apiErr := &APIError{StatusCode: status}

	if env, ok := parseEnvelope(raw); ok {
		apiErr.Message = env.message()
		return apiErr
	}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}

	return apiErr
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}

	return e.Error
}
