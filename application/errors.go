package application

import "errors"

// Engine construction errors.
var (
	// ErrResolverRequired is returned when no language resolver is set.
	ErrResolverRequired = errors.New("language resolver is required")

	// ErrPresenterRequired is returned when no presenter is set.
	ErrPresenterRequired = errors.New("presenter is required")

	// ErrInvalidDetector is returned for nil, unnamed or duplicate detectors.
	ErrInvalidDetector = errors.New("invalid detector")

	// ErrSessionExists is returned when opening a session id twice.
	ErrSessionExists = errors.New("session already open")

	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
)

// DefaultIntervalDays is the cooldown used when no settings are given.
const DefaultIntervalDays = 14
