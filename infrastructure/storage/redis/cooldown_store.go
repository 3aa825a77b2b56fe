package redis

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/suggest-go/domain/cooldown"
)

// CooldownStore keeps last-presented times in one Redis hash keyed by
// detector id. Values are Unix nanoseconds.
type CooldownStore struct {
	client    *redis.Client
	keyPrefix string
	ownsConn  bool
	closed    atomic.Bool
}

// NewCooldownStore connects to Redis and creates a cooldown store. The
// connection is checked with a ping bounded by the dial timeout.
func NewCooldownStore(cfg Config, opts ...ConfigOption) (*CooldownStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	return &CooldownStore{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ownsConn:  true,
	}, nil
}

// NewCooldownStoreFromClient creates a store on a client owned by the
// caller. Close leaves the client open.
func NewCooldownStoreFromClient(client *redis.Client, keyPrefix string) *CooldownStore {
	return &CooldownStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Key format: prefix:cooldown
func (s *CooldownStore) key() string {
	return s.keyPrefix + "cooldown"
}

// LastFired returns when detectorID last presented a suggestion.
func (s *CooldownStore) LastFired(ctx context.Context, detectorID string) (time.Time, bool, error) {
	if err := s.check(ctx, detectorID); err != nil {
		return time.Time{}, false, err
	}

	val, err := s.client.HGet(ctx, s.key(), detectorID).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, wrapError(err)
	}

	at, err := decodeTime(val)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

// RecordFired stores at as the last presentation time of detectorID.
func (s *CooldownStore) RecordFired(ctx context.Context, detectorID string, at time.Time) error {
	if err := s.check(ctx, detectorID); err != nil {
		return err
	}
	return wrapError(s.client.HSet(ctx, s.key(), detectorID, encodeTime(at)).Err())
}

// Clear forgets every record.
func (s *CooldownStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return cooldown.ErrStoreClosed
	}
	return wrapError(s.client.Del(ctx, s.key()).Err())
}

// Close closes the connection if the store opened it.
func (s *CooldownStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if !s.ownsConn {
		return nil
	}
	return s.client.Close()
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

func encodeTime(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

func decodeTime(val string) (time.Time, error) {
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, errors.Join(ErrMalformedValue, err)
	}
	return time.Unix(0, n), nil
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Join(ErrConnectionFailed, err)
	}
	return err
}

// Ensure CooldownStore implements cooldown.Store
var _ cooldown.Store = (*CooldownStore)(nil)
