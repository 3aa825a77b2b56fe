package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/suggest-go/domain/event"
)

// EventStore is a PostgreSQL-backed implementation of event.Store.
type EventStore struct {
	pool        *pgxpool.Pool
	schema      string
	ownsPool    bool
	subscribers map[string][]chan event.Event
	mu          sync.RWMutex
}

// Open connects, creates the events table if needed and returns a store
// that closes the pool on Close.
func Open(ctx context.Context, cfg Config, opts ...ConfigOption) (*EventStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := NewEventStore(pool, cfg.Schema)
	s.ownsPool = true

	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewEventStore creates an event store on a pool owned by the caller.
func NewEventStore(pool *pgxpool.Pool, schema string) *EventStore {
	if schema == "" {
		schema = "public"
	}
	return &EventStore{
		pool:        pool,
		schema:      schema,
		subscribers: make(map[string][]chan event.Event),
	}
}

// tableName returns the fully qualified table name.
func (s *EventStore) tableName() string {
	return fmt.Sprintf("%s.suggest_events", pgx.Identifier{s.schema}.Sanitize())
}

// Migrate creates the events table if it doesn't exist.
func (s *EventStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			type TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			payload JSONB,
			sequence BIGINT NOT NULL,
			version INT NOT NULL DEFAULT 1,
			UNIQUE (session_id, sequence)
		)
	`, s.tableName()))
	return s.wrapError(err)
}

// Append persists one or more events atomically.
func (s *EventStore) Append(ctx context.Context, events ...event.Event) error {
	if len(events) == 0 {
		return nil
	}
	for _, e := range events {
		if e.Type == "" || e.SessionID == "" {
			return event.ErrInvalidEvent
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return s.wrapError(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	sequences := make(map[string]uint64)
	for _, e := range events {
		if _, ok := sequences[e.SessionID]; ok {
			continue
		}
		var maxSeq *int64
		err := tx.QueryRow(ctx,
			fmt.Sprintf("SELECT MAX(sequence) FROM %s WHERE session_id = $1", s.tableName()),
			e.SessionID,
		).Scan(&maxSeq)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return s.wrapError(err)
		}
		sequences[e.SessionID] = 0
		if maxSeq != nil {
			sequences[e.SessionID] = uint64(*maxSeq)
		}
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (id, session_id, type, timestamp, payload, sequence, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.tableName())

	stored := make([]event.Event, len(events))
	copy(stored, events)

	for i := range stored {
		e := &stored[i]
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		sequences[e.SessionID]++
		e.Sequence = sequences[e.SessionID]
		if e.Version == 0 {
			e.Version = 1
		}

		_, err := tx.Exec(ctx, insertQuery,
			e.ID, e.SessionID, string(e.Type), e.Timestamp, []byte(e.Payload), int64(e.Sequence), e.Version,
		)
		if err != nil {
			return s.wrapError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return s.wrapError(err)
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
	query := fmt.Sprintf(`
		SELECT id, session_id, type, timestamp, payload, sequence, version
		FROM %s
		WHERE session_id = $1 AND sequence >= $2
		ORDER BY sequence ASC
	`, s.tableName())

	rows, err := s.pool.Query(ctx, query, sessionID, int64(fromSeq))
	if err != nil {
		return nil, s.wrapError(err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Subscribe returns a channel that receives new events for a session.
func (s *EventStore) Subscribe(ctx context.Context, sessionID string) (<-chan event.Event, error) {
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

// CountEvents returns the number of events for a session.
func (s *EventStore) CountEvents(ctx context.Context, sessionID string) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE session_id = $1`, s.tableName())

	var count int64
	if err := s.pool.QueryRow(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, s.wrapError(err)
	}
	return count, nil
}

// ListSessions returns every session id with events, sorted.
func (s *EventStore) ListSessions(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT session_id FROM %s ORDER BY session_id`, s.tableName())

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, s.wrapError(err)
	}
	defer rows.Close()

	sessions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, s.wrapError(err)
	}
	return sessions, nil
}

// DeleteSession removes every event of a session.
func (s *EventStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	for _, ch := range s.subscribers[sessionID] {
		close(ch)
	}
	delete(s.subscribers, sessionID)
	s.mu.Unlock()

	_, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE session_id = $1`, s.tableName()), sessionID)
	return s.wrapError(err)
}

// Close closes subscriber channels and the pool if the store opened it.
func (s *EventStore) Close() error {
	s.mu.Lock()
	for _, subs := range s.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	s.subscribers = make(map[string][]chan event.Event)
	s.mu.Unlock()

	if s.ownsPool {
		s.pool.Close()
	}
	return nil
}

func scanEvents(rows pgx.Rows) ([]event.Event, error) {
	var events []event.Event
	for rows.Next() {
		var (
			e         event.Event
			eventType string
			payload   []byte
			seq       int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &eventType, &e.Timestamp, &payload, &seq, &e.Version); err != nil {
			return nil, err
		}
		e.Type = event.Type(eventType)
		e.Payload = payload
		e.Sequence = uint64(seq)
		events = append(events, e)
	}
	return events, rows.Err()
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

// wrapError wraps database errors with package errors.
func (s *EventStore) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrOperationTimeout, err)
	}
	return errors.Join(ErrConnectionFailed, err)
}

// Ensure EventStore implements event.Store
var _ event.Store = (*EventStore)(nil)
