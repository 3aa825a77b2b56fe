package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/suggest-go/domain/action"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Common field constructors for suggestion engine logging.

// SessionID adds a session ID field.
func SessionID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("session_id", id)
	}
}

// DetectorID adds a detector ID field.
func DetectorID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("detector", id)
	}
}

// ActionKind adds the kind and phase of an action.
func ActionKind(a action.Action) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("action", string(a.Kind)).Str("phase", string(a.Phase))
	}
}

// Language adds a language ID field.
func Language(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("language", id)
	}
}

// SuggestionKind adds the kind and ID of a suggestion.
func SuggestionKind(s suggestion.Suggestion) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("suggestion", string(s.Kind)).Str("suggestion_id", s.ID)
	}
}

// Phase adds a detector phase field.
func Phase(p string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("phase", p)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Reason adds a reason field.
func Reason(reason string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("reason", reason)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// Int adds an integer field with custom key.
func Int(key string, value int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, value)
	}
}
