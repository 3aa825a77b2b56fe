// Package cooldown tracks when each detector last presented a suggestion.
package cooldown

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidDetectorID indicates an empty detector id.
	ErrInvalidDetectorID = errors.New("invalid detector id")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("cooldown store closed")
)

// Store persists the last presentation time per detector.
type Store interface {
	// LastFired returns when detectorID last presented a suggestion.
	LastFired(ctx context.Context, detectorID string) (time.Time, bool, error)

	// RecordFired stores at as the last presentation time of detectorID.
	RecordFired(ctx context.Context, detectorID string, at time.Time) error

	// Clear forgets every record.
	Clear(ctx context.Context) error
}

// Day is the unit of the suggesting interval.
const Day = 24 * time.Hour

// Ready reports whether a detector that last fired at last (ok=false means
// never) may present again at now given an interval in days. A non-positive
// interval disables the cooldown.
func Ready(last time.Time, ok bool, now time.Time, intervalDays int) bool {
	if !ok || intervalDays <= 0 {
		return true
	}
	return now.Sub(last) >= time.Duration(intervalDays)*Day
}
