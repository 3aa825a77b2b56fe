package event

import "context"

// Publisher publishes domain events.
type Publisher interface {
	// Publish delivers events to the store and any listeners.
	Publish(ctx context.Context, events ...Event) error

	// Close releases any resources held by the publisher.
	Close() error
}

// Listener receives published events synchronously.
type Listener func(Event)
