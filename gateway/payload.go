package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Payload is an action request: the action name plus the remaining fields,
// kept raw until an action asks for them.
type Payload struct {
	Action string
	fields map[string]json.RawMessage
}

// ParseJSON decodes a `{action, ...}` body.
func ParseJSON(body []byte) (Payload, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &fields); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	p := Payload{fields: fields}
	p.Action = p.String("action")
	return p, nil
}

// FromValues builds a payload from form or query values.
func FromValues(values map[string]string) Payload {
	fields := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		raw, _ := json.Marshal(v)
		fields[k] = raw
	}
	p := Payload{fields: fields}
	p.Action = p.String("action")
	return p
}

// NewPayload builds a payload for action from already typed fields.
func NewPayload(action string, fields map[string]any) (Payload, error) {
	raw := make(map[string]json.RawMessage, len(fields)+1)
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return Payload{}, fmt.Errorf("encode field %q: %w", k, err)
		}
		raw[k] = b
	}
	raw["action"], _ = json.Marshal(action)
	return Payload{Action: action, fields: raw}, nil
}

func (p Payload) Has(key string) bool {
	raw, ok := p.fields[key]
	return ok && !isNull(raw)
}

// String returns the field as text. Numbers and booleans are returned in
// their JSON spelling; missing and null fields are empty.
func (p Payload) String(key string) string {
	raw, ok := p.fields[key]
	if !ok || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// Object returns a nested object field as its own payload. The field may be
// an object or a string holding a JSON object, as form posts send it.
func (p Payload) Object(key string) (Payload, bool) {
	raw, ok := p.fields[key]
	if !ok || isNull(raw) {
		return Payload{}, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = json.RawMessage(s)
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Payload{}, false
	}
	return Payload{fields: fields}, true
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
