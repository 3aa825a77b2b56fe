package event

import "errors"

// Domain errors for event store operations.
var (
	// ErrInvalidEvent is returned when an event is malformed.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrPublisherClosed is returned when publishing after Close.
	ErrPublisherClosed = errors.New("event publisher closed")

	// ErrSessionNotFound is returned when a session has no events.
	ErrSessionNotFound = errors.New("session not found")
)
