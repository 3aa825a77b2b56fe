package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/cooldown"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/memory"
)

func TestCooldownStore(t *testing.T) {
	t.Parallel()

	store := memory.NewCooldownStore()
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if _, ok, err := store.LastFired(ctx, "unwrap"); err != nil || ok {
		t.Fatalf("LastFired() = _, %v, %v, want no record", ok, err)
	}

	if err := store.RecordFired(ctx, "unwrap", at); err != nil {
		t.Fatalf("RecordFired() error = %v", err)
	}

	got, ok, err := store.LastFired(ctx, "unwrap")
	if err != nil || !ok || !got.Equal(at) {
		t.Errorf("LastFired() = %v, %v, %v, want %v", got, ok, err, at)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", store.Len())
	}
}

func TestCooldownStore_Errors(t *testing.T) {
	t.Parallel()

	store := memory.NewCooldownStore()

	if _, _, err := store.LastFired(context.Background(), ""); !errors.Is(err, cooldown.ErrInvalidDetectorID) {
		t.Errorf("LastFired(\"\") error = %v, want ErrInvalidDetectorID", err)
	}
	if err := store.RecordFired(context.Background(), "", time.Now()); !errors.Is(err, cooldown.ErrInvalidDetectorID) {
		t.Errorf("RecordFired(\"\") error = %v, want ErrInvalidDetectorID", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.RecordFired(ctx, "unwrap", time.Now()); !errors.Is(err, context.Canceled) {
		t.Errorf("RecordFired() error = %v, want context.Canceled", err)
	}
}

func TestCooldownStore_Concurrent(t *testing.T) {
	t.Parallel()

	store := memory.NewCooldownStore()
	ctx := context.Background()
	ids := []string{"unwrap", "run_to_cursor", "file_structure"}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := ids[i%len(ids)]
			_ = store.RecordFired(ctx, id, time.Now())
			_, _, _ = store.LastFired(ctx, id)
		}(i)
	}
	wg.Wait()

	if store.Len() != len(ids) {
		t.Errorf("Len() = %d, want %d", store.Len(), len(ids))
	}
}
