package application

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
	"github.com/felixgeelhaar/suggest-go/infrastructure/logging"
)

// EngineFactory builds the engine for a new session.
type EngineFactory func(session suggestion.Session) (*Engine, error)

// Sessions keeps one engine per open editor session.
type Sessions struct {
	factory EngineFactory

	mu      sync.RWMutex
	engines map[string]*Engine
}

// NewSessions creates a session manager that builds engines with factory.
func NewSessions(factory EngineFactory) *Sessions {
	return &Sessions{
		factory: factory,
		engines: make(map[string]*Engine),
	}
}

// Open starts a session.
func (s *Sessions) Open(session suggestion.Session) (*Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.engines[session.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, session.ID)
	}

	e, err := s.factory(session)
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", session.ID, err)
	}
	s.engines[e.Session().ID] = e

	logging.Debug().
		Add(logging.SessionID(e.Session().ID)).
		Add(logging.Str("session_name", session.Name)).
		Msg("session opened")

	return e, nil
}

// Get returns the engine of an open session.
func (s *Sessions) Get(id string) (*Engine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.engines[id]
	return e, ok
}

// IDs returns the open session ids in sorted order.
func (s *Sessions) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.engines))
	for id := range s.engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close ends a session and forgets its engine.
func (s *Sessions) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.engines[id]
	delete(s.engines, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	e.EndSession(ctx)
	return nil
}

// CloseAll ends every open session.
func (s *Sessions) CloseAll(ctx context.Context) {
	s.mu.Lock()
	engines := s.engines
	s.engines = make(map[string]*Engine)
	s.mu.Unlock()

	for _, e := range engines {
		e.EndSession(ctx)
	}
}
