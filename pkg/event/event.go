// Package event defines the AG-UI protocol records emitted to UI clients.
//
// Every record is a single line of compact JSON carrying a "type" field equal
// to "message" or "update_ui". Records recovered from model output keep their
// original bytes; records built here (prose wrapped as a message) are encoded
// with HTML escaping disabled so content round-trips verbatim.
package event

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Type is the discriminator of a protocol record.
type Type string

const (
	// TypeMessage is free-form text directed at the end user.
	TypeMessage Type = "message"

	// TypeUpdateUI instructs the client to render or update a named UI region.
	TypeUpdateUI Type = "update_ui"

	// RoleAssistant is the only role the server ever emits.
	RoleAssistant = "assistant"
)

// ParseType reports whether s names a recognized record type.
func ParseType(s string) (Type, bool) {
	switch Type(s) {
	case TypeMessage:
		return TypeMessage, true
	case TypeUpdateUI:
		return TypeUpdateUI, true
	default:
		return "", false
	}
}

// Message is the decoded form of a "message" record.
type Message struct {
	Type    Type   `json:"type"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UpdateUI is the decoded form of an "update_ui" record.
type UpdateUI struct {
	Type      Type           `json:"type"`
	Component string         `json:"component"`
	Props     map[string]any `json:"props"`
}

// Event is one protocol record ready for the wire.
type Event struct {
	kind Type
	raw  []byte
}

// NewMessage wraps content as an assistant message record.
func NewMessage(content string) Event {
	raw, err := encodeCompact(Message{
		Type:    TypeMessage,
		Role:    RoleAssistant,
		Content: content,
	})
	if err != nil {
		// A struct of strings always encodes.
		panic(fmt.Sprintf("encoding message event: %v", err))
	}

	return Event{kind: TypeMessage, raw: raw}
}

// NewUpdateUI builds an update_ui record for component with props.
func NewUpdateUI(component string, props map[string]any) (Event, error) {
	if props == nil {
		props = map[string]any{}
	}

	raw, err := encodeCompact(UpdateUI{
		Type:      TypeUpdateUI,
		Component: component,
		Props:     props,
	})
	if err != nil {
		return Event{}, fmt.Errorf("encoding update_ui event: %w", err)
	}

	return Event{kind: TypeUpdateUI, raw: raw}, nil
}

// FromRaw adopts raw as a record of the given type without re-encoding.
// raw must already be a valid single-line JSON object.
func FromRaw(kind Type, raw []byte) Event {
	return Event{kind: kind, raw: raw}
}

// Type returns the record discriminator.
func (e Event) Type() Type {
	return e.kind
}

// Bytes returns the compact JSON form, without a trailing newline.
func (e Event) Bytes() []byte {
	return e.raw
}

func (e Event) String() string {
	return string(e.raw)
}

// IsZero reports whether e is the zero Event.
func (e Event) IsZero() bool {
	return e.kind == "" && len(e.raw) == 0
}

// MarshalJSON embeds the record verbatim when an Event is nested in
// another JSON document.
func (e Event) MarshalJSON() ([]byte, error) {
	if len(e.raw) == 0 {
		return []byte("null"), nil
	}
	return e.raw, nil
}

// UnmarshalJSON accepts any record produced by MarshalJSON.
func (e *Event) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	kind, ok := ParseType(probe.Type)
	if !ok {
		return fmt.Errorf("unrecognized event type %q", probe.Type)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}

	e.kind = kind
	e.raw = buf.Bytes()
	return nil
}

// AsMessage decodes a message record.
func (e Event) AsMessage() (Message, error) {
	var m Message
	if e.kind != TypeMessage {
		return m, fmt.Errorf("event is %q, not %q", e.kind, TypeMessage)
	}
	err := json.Unmarshal(e.raw, &m)
	return m, err
}

// AsUpdateUI decodes an update_ui record.
func (e Event) AsUpdateUI() (UpdateUI, error) {
	var u UpdateUI
	if e.kind != TypeUpdateUI {
		return u, fmt.Errorf("event is %q, not %q", e.kind, TypeUpdateUI)
	}
	err := json.Unmarshal(e.raw, &u)
	return u, err
}

func encodeCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	// Encoder terminates every value with '\n'.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
