// Package memory provides in-memory cooldown and event stores. State lives
// for the life of the process.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/suggest-go/domain/event"
)

// EventStore is an in-memory implementation of event.Store.
type EventStore struct {
	events      map[string][]event.Event // sessionID -> events
	subscribers map[string][]chan event.Event
	sequences   map[string]uint64 // sessionID -> last sequence
	mu          sync.RWMutex
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		events:      make(map[string][]event.Event),
		subscribers: make(map[string][]chan event.Event),
		sequences:   make(map[string]uint64),
	}
}

// Append persists one or more events atomically. Nothing is stored when
// any event is invalid.
func (s *EventStore) Append(ctx context.Context, events ...event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, e := range events {
		if e.Type == "" || e.SessionID == "" {
			return event.ErrInvalidEvent
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		s.sequences[e.SessionID]++
		e.Sequence = s.sequences[e.SessionID]

		s.events[e.SessionID] = append(s.events[e.SessionID], e)

		for _, sub := range s.subscribers[e.SessionID] {
			select {
			case sub <- e:
			default:
				// Channel full, skip (non-blocking)
			}
		}
	}

	return nil
}

// LoadEvents retrieves all events for a session in sequence order.
func (s *EventStore) LoadEvents(ctx context.Context, sessionID string) ([]event.Event, error) {
	return s.LoadEventsFrom(ctx, sessionID, 0)
}

// LoadEventsFrom retrieves events starting from a specific sequence number.
func (s *EventStore) LoadEventsFrom(ctx context.Context, sessionID string, fromSeq uint64) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []event.Event{}
	for _, e := range s.events[sessionID] {
		if e.Sequence >= fromSeq {
			result = append(result, e)
		}
	}
	return result, nil
}

// Subscribe returns a channel that receives new events for a session.
func (s *EventStore) Subscribe(ctx context.Context, sessionID string) (<-chan event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan event.Event, 100)
	s.subscribers[sessionID] = append(s.subscribers[sessionID], ch)

	go func() {
		<-ctx.Done()
		s.unsubscribe(sessionID, ch)
	}()

	return ch, nil
}

func (s *EventStore) unsubscribe(sessionID string, ch chan event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := s.subscribers[sessionID]
	for i, sub := range subs {
		if sub == ch {
			s.subscribers[sessionID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(s.subscribers[sessionID]) == 0 {
		delete(s.subscribers, sessionID)
	}
}

// CountEvents returns the number of events for a session.
func (s *EventStore) CountEvents(ctx context.Context, sessionID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.events[sessionID])), nil
}

// ListSessions returns every session id with events in the store.
func (s *EventStore) ListSessions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.events))
	for id := range s.events {
		sessions = append(sessions, id)
	}
	return sessions, nil
}

// DeleteSession removes every event of a session and closes its
// subscriber channels.
func (s *EventStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subscribers[sessionID] {
		close(ch)
	}
	delete(s.subscribers, sessionID)
	delete(s.events, sessionID)
	delete(s.sequences, sessionID)

	return nil
}

// Clear removes all events and closes every subscriber channel.
func (s *EventStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, subs := range s.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}

	s.events = make(map[string][]event.Event)
	s.subscribers = make(map[string][]chan event.Event)
	s.sequences = make(map[string]uint64)
}

// Len returns the total number of events across all sessions.
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	for _, events := range s.events {
		count += len(events)
	}
	return count
}

// Ensure EventStore implements event.Store
var _ event.Store = (*EventStore)(nil)
