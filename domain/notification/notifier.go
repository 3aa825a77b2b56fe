package notification

import (
	"context"
)

// Notifier defines the interface for sending notifications.
type Notifier interface {
	// Notify sends a notification event.
	Notify(ctx context.Context, event *Event) error

	// Close releases any resources held by the notifier.
	Close() error
}

// EventFilter reports whether an event should be sent.
type EventFilter func(event *Event) bool

// FilterByType returns a filter that only allows specified event types.
func FilterByType(types ...EventType) EventFilter {
	typeSet := make(map[EventType]bool)
	for _, t := range types {
		typeSet[t] = true
	}
	return func(event *Event) bool {
		return typeSet[event.Type]
	}
}

// FilterByDetector returns a filter that only allows suggestions produced
// by the given detectors. Events without a suggestion payload are dropped.
func FilterByDetector(detectorIDs ...string) EventFilter {
	idSet := make(map[string]bool)
	for _, id := range detectorIDs {
		idSet[id] = true
	}
	return func(event *Event) bool {
		if event.Type != EventSuggestionPresented {
			return false
		}
		var p SuggestionPayload
		if err := event.DecodePayload(&p); err != nil {
			return false
		}
		return idSet[p.DetectorID]
	}
}

// CombineFilters returns a filter that requires all provided filters to pass.
func CombineFilters(filters ...EventFilter) EventFilter {
	return func(event *Event) bool {
		for _, f := range filters {
			if !f(event) {
				return false
			}
		}
		return true
	}
}

// Endpoint represents a webhook endpoint configuration.
type Endpoint struct {
	// URL is the webhook endpoint URL.
	URL string `json:"url"`
	// Secret is the shared secret for HMAC signing.
	Secret string `json:"secret,omitempty"`
	// Headers are additional HTTP headers to include.
	Headers map[string]string `json:"headers,omitempty"`
	// Filter is an optional event filter for this endpoint.
	Filter EventFilter `json:"-"`
	// Enabled indicates if this endpoint is active.
	Enabled bool `json:"enabled"`
	// Name is an optional friendly name for the endpoint.
	Name string `json:"name,omitempty"`
}
