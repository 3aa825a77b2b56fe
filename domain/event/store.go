package event

import "context"

// Store defines the interface for event persistence.
type Store interface {
	// Append persists one or more events atomically.
	// Events are assigned sequence numbers in order of appearance.
	Append(ctx context.Context, events ...Event) error

	// LoadEvents retrieves all events for a session in sequence order.
	LoadEvents(ctx context.Context, sessionID string) ([]Event, error)

	// LoadEventsFrom retrieves events starting from a specific sequence number.
	LoadEventsFrom(ctx context.Context, sessionID string, fromSeq uint64) ([]Event, error)

	// Subscribe returns a channel that receives new events for a session.
	// The channel is closed when the context is cancelled.
	Subscribe(ctx context.Context, sessionID string) (<-chan Event, error)
}
