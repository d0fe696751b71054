package schema

import (
	"encoding/json"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// StreamEvent is a single decoded event from a streaming query. Exactly
// one event type is active per frame; which fields are set depends on
// the type.
type StreamEvent struct {
	Type     string          `json:"type"`
	QueryID  string          `json:"query_id,omitempty"`
	Message  string          `json:"message,omitempty"`
	Token    string          `json:"token,omitempty"`
	Metadata Metadata        `json:"metadata,omitempty"`
	Source   *Source         `json:"source,omitempty"`
	Code     string          `json:"code,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// SSE EVENT NAMES

const (
	EventStart    = "start"    // Query accepted, processing begins
	EventThinking = "thinking" // Progress narration while retrieving
	EventToken    = "token"    // Incremental answer text fragment
	EventMetadata = "metadata" // Query metadata, replacing any previous metadata
	EventSource   = "source"   // A scriptural source citation
	EventDone     = "done"     // Query complete
	EventError    = "error"    // Query failed
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// ParseStreamEvent decodes the payload of a named stream event. Unknown
// event names return nil so new server-side event types pass through
// harmlessly; malformed payloads return an error.
func ParseStreamEvent(name string, data []byte) (*StreamEvent, error) {
	event := &StreamEvent{Type: name, Data: data}
	switch name {
	case EventStart:
		var payload struct {
			QueryID string `json:"query_id"`
		}
		if err := decodePayload(data, &payload); err != nil {
			return nil, err
		}
		event.QueryID = payload.QueryID
	case EventThinking:
		var payload struct {
			Message string `json:"message"`
		}
		if err := decodePayload(data, &payload); err != nil {
			return nil, err
		}
		event.Message = payload.Message
	case EventToken:
		var payload struct {
			Token string `json:"token"`
		}
		if err := decodePayload(data, &payload); err != nil {
			return nil, err
		}
		event.Token = payload.Token
	case EventMetadata:
		var payload Metadata
		if err := decodePayload(data, &payload); err != nil {
			return nil, err
		}
		event.Metadata = payload
	case EventSource:
		var payload Source
		if err := decodePayload(data, &payload); err != nil {
			return nil, err
		}
		event.Source = &payload
	case EventDone:
		// No payload
	case EventError:
		var payload struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		}
		if err := decodePayload(data, &payload); err != nil {
			return nil, err
		}
		event.Message = payload.Message
		event.Code = payload.Code
	default:
		return nil, nil
	}
	return event, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Terminal returns true when no further events follow this one
func (e *StreamEvent) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (e StreamEvent) String() string {
	return types.Stringify(e)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// decodePayload unmarshals a payload, treating an empty payload as an
// empty object
func decodePayload(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
