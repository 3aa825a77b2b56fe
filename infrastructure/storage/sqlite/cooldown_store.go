package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/cooldown"
)

// CooldownStore is a SQLite-backed implementation of cooldown.Store.
type CooldownStore struct {
	db     *sql.DB
	ownsDB bool
	closed atomic.Bool
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

	s := &CooldownStore{db: db, ownsDB: true}

	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return s, nil
}

// NewCooldownStoreFromDB creates a cooldown store on a database owned by the
// caller. Close leaves the database open.
func NewCooldownStoreFromDB(db *sql.DB) (*CooldownStore, error) {
	s := &CooldownStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CooldownStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS cooldown (
			detector_id TEXT PRIMARY KEY,
			fired_at INTEGER NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	return nil
}

// LastFired returns when detectorID last presented a suggestion.
func (s *CooldownStore) LastFired(ctx context.Context, detectorID string) (time.Time, bool, error) {
	if err := s.check(ctx, detectorID); err != nil {
		return time.Time{}, false, err
	}

	var nanos int64
	err := s.db.QueryRowContext(ctx,
		"SELECT fired_at FROM cooldown WHERE detector_id = ?",
		detectorID,
	).Scan(&nanos)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(0, nanos), true, nil
}

// RecordFired stores at as the last presentation time of detectorID.
func (s *CooldownStore) RecordFired(ctx context.Context, detectorID string, at time.Time) error {
	if err := s.check(ctx, detectorID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cooldown (detector_id, fired_at) VALUES (?, ?)
		 ON CONFLICT(detector_id) DO UPDATE SET fired_at = excluded.fired_at`,
		detectorID, at.UnixNano(),
	)
	return err
}

// Clear forgets every record.
func (s *CooldownStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return cooldown.ErrStoreClosed
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM cooldown")
	return err
}

// Close closes the database if the store opened it.
func (s *CooldownStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

func (s *CooldownStore) check(ctx context.Context, detectorID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if detectorID == "" {
		return cooldown.ErrInvalidDetectorID
	}
	if s.closed.Load() {
		return cooldown.ErrStoreClosed
	}
	return nil
}

// Ensure CooldownStore implements cooldown.Store
var _ cooldown.Store = (*CooldownStore)(nil)
