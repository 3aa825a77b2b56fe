package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/felixgeelhaar/suggest-go/domain/cooldown"
)

// CooldownStore is a BadgerDB-backed implementation of cooldown.Store.
type CooldownStore struct {
	db        *badger.DB
	keyPrefix string
	ownsDB    bool
	gc        *gcRunner
	closed    atomic.Bool
}

// NewCooldownStore opens a database and creates a cooldown store on it.
func NewCooldownStore(cfg Config, opts ...Option) (*CooldownStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	return &CooldownStore{
		db:        db,
		keyPrefix: cfg.KeyPrefix,
		ownsDB:    true,
		gc:        startGC(db, cfg.GCInterval, cfg.GCDiscardRatio),
	}, nil
}

// NewCooldownStoreFromDB creates a cooldown store on a database owned by the
// caller. Close leaves the database open.
func NewCooldownStoreFromDB(db *badger.DB, keyPrefix string) *CooldownStore {
	return &CooldownStore{
		db:        db,
		keyPrefix: keyPrefix,
		gc:        startGC(db, 0, 0),
	}
}

// Key format: prefix:cooldown:detectorID
func (s *CooldownStore) key(detectorID string) []byte {
	return []byte(s.keyPrefix + "cooldown:" + detectorID)
}

// LastFired returns when detectorID last presented a suggestion.
func (s *CooldownStore) LastFired(ctx context.Context, detectorID string) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}
	if detectorID == "" {
		return time.Time{}, false, cooldown.ErrInvalidDetectorID
	}
	if s.closed.Load() {
		return time.Time{}, false, cooldown.ErrStoreClosed
	}

	var at time.Time
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(detectorID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return ErrMalformedValue
			}
			at = time.Unix(0, int64(binary.BigEndian.Uint64(val)))
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

// RecordFired stores at as the last presentation time of detectorID.
func (s *CooldownStore) RecordFired(ctx context.Context, detectorID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if detectorID == "" {
		return cooldown.ErrInvalidDetectorID
	}
	if s.closed.Load() {
		return cooldown.ErrStoreClosed
	}

	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, uint64(at.UnixNano()))

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(detectorID), val)
	})
}

// Clear forgets every record.
func (s *CooldownStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return cooldown.ErrStoreClosed
	}
	return s.db.DropPrefix([]byte(s.keyPrefix + "cooldown:"))
}

// Close stops GC and closes the database if the store opened it.
func (s *CooldownStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.gc.Stop()
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

// Ensure CooldownStore implements cooldown.Store
var _ cooldown.Store = (*CooldownStore)(nil)
