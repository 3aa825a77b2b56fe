package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/suggest-go/domain/event"
)

// EventStore is a SQLite-backed implementation of event.Store.
type EventStore struct {
	db          *sql.DB
	ownsDB      bool
	subscribers map[string][]chan event.Event
	closed      bool
	mu          sync.RWMutex
}

// NewEventStore creates a new SQLite event store with the given configuration.
func NewEventStore(cfg Config, opts ...Option) (*EventStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &EventStore{
		db:          db,
		ownsDB:      true,
		subscribers: make(map[string][]chan event.Event),
	}

	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return s, nil
}

// NewEventStoreFromDB creates an event store on a database owned by the
// caller. Close leaves the database open.
func NewEventStoreFromDB(db *sql.DB) (*EventStore, error) {
	s := &EventStore{
		db:          db,
		subscribers: make(map[string][]chan event.Event),
	}

	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

// migrate creates the events table if it doesn't exist.
func (s *EventStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			type TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			timestamp INTEGER NOT NULL,
			data BLOB NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_events_session_seq ON events(session_id, sequence);
		CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	return nil
}

// Append persists one or more events atomically. Sequences continue from
// the highest stored sequence of each session.
func (s *EventStore) Append(ctx context.Context, events ...event.Event) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	for _, e := range events {
		if e.Type == "" || e.SessionID == "" {
			return event.ErrInvalidEvent
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (id, session_id, type, sequence, timestamp, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UnixNano()
	sequences := make(map[string]uint64)
	stored := make([]event.Event, 0, len(events))

	for _, e := range events {
		seq, ok := sequences[e.SessionID]
		if !ok {
			var maxSeq sql.NullInt64
			err := tx.QueryRowContext(ctx,
				"SELECT MAX(sequence) FROM events WHERE session_id = ?",
				e.SessionID,
			).Scan(&maxSeq)
			if err != nil {
				return err
			}
			if maxSeq.Valid {
				seq = uint64(maxSeq.Int64)
			}
		}

		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		seq++
		e.Sequence = seq
		sequences[e.SessionID] = seq

		data, err := json.Marshal(e)
		if err != nil {
			return err
		}

		_, err = stmt.ExecContext(ctx,
			e.ID, e.SessionID, string(e.Type), e.Sequence, e.Timestamp.UnixNano(), data, now,
		)
		if err != nil {
			return err
		}

		stored = append(stored, e)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.notifySubscribers(stored)
	return nil
}

// LoadEvents retrieves all events for a session in sequence order.
func (s *EventStore) LoadEvents(ctx context.Context, sessionID string) ([]event.Event, error) {
	return s.LoadEventsFrom(ctx, sessionID, 0)
}

// LoadEventsFrom retrieves events with a sequence of at least fromSeq.
func (s *EventStore) LoadEventsFrom(ctx context.Context, sessionID string, fromSeq uint64) ([]event.Event, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT data FROM events WHERE session_id = ? AND sequence >= ? ORDER BY sequence",
		sessionID, fromSeq,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []event.Event
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}

		var e event.Event
		if err := json.Unmarshal(data, &e); err != nil {
			continue // Skip malformed entries
		}

		events = append(events, e)
	}

	return events, rows.Err()
}

// Subscribe returns a channel that receives new events for a session.
func (s *EventStore) Subscribe(ctx context.Context, sessionID string) (<-chan event.Event, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	ch := make(chan event.Event, 100)
	s.subscribers[sessionID] = append(s.subscribers[sessionID], ch)
	s.mu.Unlock()

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

func (s *EventStore) notifySubscribers(events []event.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range events {
		for _, ch := range s.subscribers[e.SessionID] {
			select {
			case ch <- e:
			default:
				// Channel full, skip
			}
		}
	}
}

// CountEvents returns the number of events for a session.
func (s *EventStore) CountEvents(ctx context.Context, sessionID string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE session_id = ?",
		sessionID,
	).Scan(&count)

	return count, err
}

// ListSessions returns every session id with events, sorted.
func (s *EventStore) ListSessions(ctx context.Context) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT session_id FROM events ORDER BY session_id",
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		sessions = append(sessions, id)
	}

	return sessions, rows.Err()
}

// DeleteSession removes every event of a session and closes its
// subscriber channels.
func (s *EventStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	for _, ch := range s.subscribers[sessionID] {
		close(ch)
	}
	delete(s.subscribers, sessionID)
	s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE session_id = ?", sessionID)
	return err
}

// Close closes subscriber channels and the database if the store opened it.
func (s *EventStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for _, subs := range s.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	s.subscribers = make(map[string][]chan event.Event)
	s.mu.Unlock()

	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

func (s *EventStore) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Ensure EventStore implements event.Store
var _ event.Store = (*EventStore)(nil)
