package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/cooldown"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/sqlite"
)

func TestCooldownStore_RecordAndLoad(t *testing.T) {
	path := testPath(t)
	ctx := context.Background()
	at := time.Date(2026, 5, 4, 10, 30, 0, 123456789, time.UTC)

	store, err := sqlite.NewCooldownStore(sqlite.DefaultConfig(), sqlite.WithPath(path))
	if err != nil {
		t.Fatalf("NewCooldownStore failed: %v", err)
	}

	if _, ok, err := store.LastFired(ctx, "unwrap"); err != nil || ok {
		t.Fatalf("LastFired before record = %v, %v", ok, err)
	}
	if err := store.RecordFired(ctx, "unwrap", at.Add(-cooldown.Day)); err != nil {
		t.Fatalf("RecordFired failed: %v", err)
	}
	if err := store.RecordFired(ctx, "unwrap", at); err != nil {
		t.Fatalf("RecordFired overwrite failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := sqlite.NewCooldownStore(sqlite.DefaultConfig(), sqlite.WithPath(path))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.LastFired(ctx, "unwrap")
	if err != nil {
		t.Fatalf("LastFired failed: %v", err)
	}
	if !ok || !got.Equal(at) {
		t.Errorf("LastFired after reopen = %v, %v, want %v", got, ok, at)
	}
}

func TestCooldownStore_Clear(t *testing.T) {
	store, err := sqlite.NewCooldownStore(sqlite.DefaultConfig(), sqlite.WithPath(testPath(t)))
	if err != nil {
		t.Fatalf("NewCooldownStore failed: %v", err)
	}
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
	store, err := sqlite.NewCooldownStore(sqlite.DefaultConfig(), sqlite.WithPath(testPath(t)))
	if err != nil {
		t.Fatalf("NewCooldownStore failed: %v", err)
	}

	ctx := context.Background()

	if _, _, err := store.LastFired(ctx, ""); !errors.Is(err, cooldown.ErrInvalidDetectorID) {
		t.Errorf("LastFired(\"\") error = %v, want ErrInvalidDetectorID", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := store.RecordFired(ctx, "unwrap", time.Now()); !errors.Is(err, cooldown.ErrStoreClosed) {
		t.Errorf("RecordFired after Close error = %v, want ErrStoreClosed", err)
	}
}
