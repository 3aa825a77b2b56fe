package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/suggest-go/domain/event"
)

// EventStore is a BadgerDB-backed journal of session events.
type EventStore struct {
	db          *badger.DB
	keyPrefix   string
	ownsDB      bool
	gc          *gcRunner
	subscribers map[string][]chan event.Event
	mu          sync.RWMutex
}

// NewEventStore opens a database and creates an event store on it.
func NewEventStore(cfg Config, opts ...Option) (*EventStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	return &EventStore{
		db:          db,
		keyPrefix:   cfg.KeyPrefix,
		ownsDB:      true,
		gc:          startGC(db, cfg.GCInterval, cfg.GCDiscardRatio),
		subscribers: make(map[string][]chan event.Event),
	}, nil
}

// NewEventStoreFromDB creates an event store on a database owned by the
// caller. Close leaves the database open.
func NewEventStoreFromDB(db *badger.DB, keyPrefix string) *EventStore {
	return &EventStore{
		db:          db,
		keyPrefix:   keyPrefix,
		gc:          startGC(db, 0, 0),
		subscribers: make(map[string][]chan event.Event),
	}
}

// Key format: prefix:events:sessionID:sequence (8 bytes, big-endian)
func (s *EventStore) eventKey(sessionID string, seq uint64) []byte {
	seqBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(seqBytes, seq)
	return append(s.eventPrefix(sessionID), seqBytes...)
}

func (s *EventStore) eventPrefix(sessionID string) []byte {
	return []byte(s.keyPrefix + "events:" + sessionID + ":")
}

// Key format: prefix:seq:sessionID
func (s *EventStore) seqKey(sessionID string) []byte {
	return []byte(s.keyPrefix + "seq:" + sessionID)
}

// Append persists one or more events atomically.
func (s *EventStore) Append(ctx context.Context, events ...event.Event) error {
	if err := ctx.Err(); err != nil {
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

	bySession := make(map[string][]event.Event)
	var order []string
	for _, e := range events {
		if _, ok := bySession[e.SessionID]; !ok {
			order = append(order, e.SessionID)
		}
		bySession[e.SessionID] = append(bySession[e.SessionID], e)
	}

	var stored []event.Event

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, sessionID := range order {
			seq, err := s.currentSeq(txn, sessionID)
			if err != nil {
				return err
			}

			for _, e := range bySession[sessionID] {
				if e.ID == "" {
					e.ID = uuid.New().String()
				}
				seq++
				e.Sequence = seq

				data, err := json.Marshal(e)
				if err != nil {
					return err
				}
				if err := txn.Set(s.eventKey(sessionID, seq), data); err != nil {
					return err
				}
				stored = append(stored, e)
			}

			seqBytes := make([]byte, 8)
			binary.BigEndian.PutUint64(seqBytes, seq)
			if err := txn.Set(s.seqKey(sessionID), seqBytes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifySubscribers(stored)
	return nil
}

func (s *EventStore) currentSeq(txn *badger.Txn, sessionID string) (uint64, error) {
	item, err := txn.Get(s.seqKey(sessionID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var seq uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return ErrMalformedValue
		}
		seq = binary.BigEndian.Uint64(val)
		return nil
	})
	return seq, err
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

	var events []event.Event

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = s.eventPrefix(sessionID)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(s.eventKey(sessionID, fromSeq)); it.Valid(); it.Next() {
			var e event.Event
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			})
			if err != nil {
				continue // Skip malformed entries
			}
			events = append(events, e)
		}
		return nil
	})

	return events, err
}

// Subscribe returns a channel that receives new events for a session.
func (s *EventStore) Subscribe(ctx context.Context, sessionID string) (<-chan event.Event, error) {
	if err := ctx.Err(); err != nil {
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
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = s.eventPrefix(sessionID)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}

// ListSessions returns every session id with events in the store.
func (s *EventStore) ListSessions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(s.keyPrefix + "seq:")
	var sessions []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			sessions = append(sessions, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})

	return sessions, err
}

// DeleteSession removes every event of a session and closes its
// subscriber channels.
func (s *EventStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	for _, ch := range s.subscribers[sessionID] {
		close(ch)
	}
	delete(s.subscribers, sessionID)
	s.mu.Unlock()

	if err := s.db.DropPrefix(s.eventPrefix(sessionID)); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.seqKey(sessionID))
	})
}

// Close stops GC, closes subscriber channels and closes the database if
// the store opened it.
func (s *EventStore) Close() error {
	s.gc.Stop()

	s.mu.Lock()
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

// Ensure EventStore implements event.Store
var _ event.Store = (*EventStore)(nil)
