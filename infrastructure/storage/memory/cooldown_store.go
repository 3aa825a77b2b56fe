package memory

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/cooldown"
)

// CooldownStore is an in-memory implementation of cooldown.Store.
type CooldownStore struct {
	fired map[string]time.Time
	mu    sync.RWMutex
}

// NewCooldownStore creates a new in-memory cooldown store.
func NewCooldownStore() *CooldownStore {
	return &CooldownStore{
		fired: make(map[string]time.Time),
	}
}

// LastFired returns when detectorID last presented a suggestion.
func (s *CooldownStore) LastFired(ctx context.Context, detectorID string) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}
	if detectorID == "" {
		return time.Time{}, false, cooldown.ErrInvalidDetectorID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	at, ok := s.fired[detectorID]
	return at, ok, nil
}

// RecordFired stores at as the last presentation time of detectorID.
func (s *CooldownStore) RecordFired(ctx context.Context, detectorID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if detectorID == "" {
		return cooldown.ErrInvalidDetectorID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fired[detectorID] = at
	return nil
}

// Clear forgets every record.
func (s *CooldownStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fired = make(map[string]time.Time)
	return nil
}

// Len returns the number of detectors with a record.
func (s *CooldownStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fired)
}

// Ensure CooldownStore implements cooldown.Store
var _ cooldown.Store = (*CooldownStore)(nil)
