package badger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/cooldown"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/badger"
)

func newTestCooldownStore(t *testing.T) *badger.CooldownStore {
	t.Helper()

	store, err := badger.NewCooldownStore(badger.Config{InMemory: true})
	if err != nil {
		t.Fatalf("NewCooldownStore failed: %v", err)
	}
	return store
}

func TestCooldownStore_RecordAndLoad(t *testing.T) {
	store := newTestCooldownStore(t)
	defer store.Close()

	ctx := context.Background()

	_, ok, err := store.LastFired(ctx, "unwrap")
	if err != nil {
		t.Fatalf("LastFired failed: %v", err)
	}
	if ok {
		t.Fatal("expected no record before RecordFired")
	}

	at := time.Date(2026, 5, 4, 10, 30, 0, 123456789, time.UTC)
	if err := store.RecordFired(ctx, "unwrap", at); err != nil {
		t.Fatalf("RecordFired failed: %v", err)
	}

	got, ok, err := store.LastFired(ctx, "unwrap")
	if err != nil {
		t.Fatalf("LastFired failed: %v", err)
	}
	if !ok {
		t.Fatal("expected record after RecordFired")
	}
	if !got.Equal(at) {
		t.Errorf("LastFired = %v, want %v", got, at)
	}

	later := at.Add(cooldown.Day)
	if err := store.RecordFired(ctx, "unwrap", later); err != nil {
		t.Fatalf("RecordFired failed: %v", err)
	}
	got, _, _ = store.LastFired(ctx, "unwrap")
	if !got.Equal(later) {
		t.Errorf("LastFired after overwrite = %v, want %v", got, later)
	}
}

func TestCooldownStore_Clear(t *testing.T) {
	store := newTestCooldownStore(t)
	defer store.Close()

	ctx := context.Background()

	for _, id := range []string{"unwrap", "run_to_cursor", "file_structure"} {
		if err := store.RecordFired(ctx, id, time.Now()); err != nil {
			t.Fatalf("RecordFired failed: %v", err)
		}
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	for _, id := range []string{"unwrap", "run_to_cursor", "file_structure"} {
		if _, ok, _ := store.LastFired(ctx, id); ok {
			t.Errorf("expected %s to be cleared", id)
		}
	}
}

func TestCooldownStore_Errors(t *testing.T) {
	store := newTestCooldownStore(t)

	ctx := context.Background()

	if _, _, err := store.LastFired(ctx, ""); !errors.Is(err, cooldown.ErrInvalidDetectorID) {
		t.Errorf("LastFired(\"\") error = %v, want ErrInvalidDetectorID", err)
	}
	if err := store.RecordFired(ctx, "", time.Now()); !errors.Is(err, cooldown.ErrInvalidDetectorID) {
		t.Errorf("RecordFired(\"\") error = %v, want ErrInvalidDetectorID", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := store.RecordFired(cancelled, "unwrap", time.Now()); !errors.Is(err, context.Canceled) {
		t.Errorf("RecordFired with cancelled context error = %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if _, _, err := store.LastFired(ctx, "unwrap"); !errors.Is(err, cooldown.ErrStoreClosed) {
		t.Errorf("LastFired after Close error = %v, want ErrStoreClosed", err)
	}
	if err := store.RecordFired(ctx, "unwrap", time.Now()); !errors.Is(err, cooldown.ErrStoreClosed) {
		t.Errorf("RecordFired after Close error = %v, want ErrStoreClosed", err)
	}
}
