// Package notification provides the messages the webhook presenter sends
// to external endpoints.
package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
)

// EventType represents the type of notification event.
type EventType string

// Event types for webhook notifications.
const (
	EventSuggestionPresented EventType = "suggestion.presented"
	EventSessionEnded        EventType = "session.ended"
)

// Event represents a notification event to be sent to webhooks.
type Event struct {
	// ID is a unique identifier for this event.
	ID string `json:"id"`
	// Type is the event type.
	Type EventType `json:"type"`
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`
	// SessionID is the editing session the event belongs to.
	SessionID string `json:"session_id"`
	// Payload contains the event-specific data.
	Payload json.RawMessage `json:"payload"`
}

// SuggestionPayload contains data for suggestion.presented events.
type SuggestionPayload struct {
	SuggestionID string          `json:"suggestion_id"`
	DetectorID   string          `json:"detector_id"`
	Kind         suggestion.Kind `json:"kind"`
	Message      string          `json:"message"`
	Link         string          `json:"link,omitempty"`
	SessionName  string          `json:"session_name,omitempty"`
}

// NewEvent creates a new notification event.
func NewEvent(id string, eventType EventType, sessionID string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        id,
		Type:      eventType,
		Timestamp: time.Now(),
		SessionID: sessionID,
		Payload:   payloadBytes,
	}, nil
}

// SuggestionEvent wraps a presented suggestion in a notification event.
func SuggestionEvent(session suggestion.Session, s suggestion.Suggestion) (*Event, error) {
	return NewEvent(uuid.New().String(), EventSuggestionPresented, session.ID, SuggestionPayload{
		SuggestionID: s.ID,
		DetectorID:   s.DetectorID,
		Kind:         s.Kind,
		Message:      s.Message,
		Link:         s.Link(),
		SessionName:  session.Name,
	})
}

// DecodePayload unmarshals the event payload into the given struct.
func (e *Event) DecodePayload(v any) error {
	if e.Payload == nil {
		return nil
	}
	return json.Unmarshal(e.Payload, v)
}
