package event

import (
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
)

// Type classifies domain events.
type Type string

const (
	// Suggestion events
	TypeSuggestionPresented  Type = "suggestion.presented"
	TypeSuggestionSuppressed Type = "suggestion.suppressed"

	// Session events
	TypeSessionEnded Type = "session.ended"
)

// SuppressReason explains why a detected suggestion was not presented.
type SuppressReason string

const (
	SuppressCooldown SuppressReason = "cooldown"
	SuppressUndoRedo SuppressReason = "undo_redo"
)

// SuggestionPresentedPayload contains data for suggestion.presented events.
type SuggestionPresentedPayload struct {
	Suggestion suggestion.Suggestion `json:"suggestion"`
}

// SuggestionSuppressedPayload contains data for suggestion.suppressed events.
type SuggestionSuppressedPayload struct {
	Suggestion suggestion.Suggestion `json:"suggestion"`
	Reason     SuppressReason        `json:"reason"`
}

// SessionEndedPayload contains data for session.ended events.
type SessionEndedPayload struct {
	HistoryLen int `json:"history_len"`
}
