package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/notification"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
)

func newTestEvent(sessionID string) *notification.Event {
	event, _ := notification.SuggestionEvent(
		suggestion.Session{ID: sessionID},
		suggestion.NewTip("Use unwrap", "unwrap", "Unwrap.html"),
	)
	return event
}

// recorder collects batches handed to OnBatch.
type recorder struct {
	mu      sync.Mutex
	batches [][]*notification.Event
}

func (r *recorder) onBatch(_ context.Context, events []*notification.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, events)
	return nil
}

func (r *recorder) sizes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.batches))
	for i, b := range r.batches {
		out[i] = len(b)
	}
	return out
}

func TestBatcher_FlushesWhenFull(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	batcher := NewBatcher(BatcherConfig{
		MaxBatchSize: 3,
		MaxWait:      time.Hour,
		OnBatch:      rec.onBatch,
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := batcher.Add(ctx, newTestEvent("s1")); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if got := rec.sizes(); len(got) != 0 {
		t.Fatalf("flushed before batch size reached: %v", got)
	}

	if err := batcher.Add(ctx, newTestEvent("s1")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got := rec.sizes(); len(got) != 1 || got[0] != 3 {
		t.Errorf("batches = %v, want [3]", got)
	}
	if batcher.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d, want 0", batcher.PendingCount())
	}
}

func TestBatcher_FlushesAfterMaxWait(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	batcher := NewBatcher(BatcherConfig{
		MaxBatchSize: 100,
		MaxWait:      20 * time.Millisecond,
		OnBatch:      rec.onBatch,
	})

	// A cancelled request context must not stop the delayed flush.
	ctx, cancel := context.WithCancel(context.Background())
	if err := batcher.Add(ctx, newTestEvent("s1")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.sizes()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := rec.sizes(); len(got) != 1 || got[0] != 1 {
		t.Errorf("batches = %v, want [1]", got)
	}
}

func TestBatcher_FlushAndClose(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	batcher := NewBatcher(BatcherConfig{MaxBatchSize: 10, MaxWait: time.Hour, OnBatch: rec.onBatch})
	ctx := context.Background()

	if err := batcher.Flush(ctx); err != nil {
		t.Fatalf("Flush() on empty batcher error = %v", err)
	}
	if len(rec.sizes()) != 0 {
		t.Fatal("empty flush should not call OnBatch")
	}

	_ = batcher.Add(ctx, newTestEvent("s1"))
	_ = batcher.Add(ctx, newTestEvent("s1"))
	if batcher.PendingCount() != 2 {
		t.Errorf("PendingCount() = %d, want 2", batcher.PendingCount())
	}

	if err := batcher.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := rec.sizes(); len(got) != 1 || got[0] != 2 {
		t.Errorf("batches after close = %v, want [2]", got)
	}

	if err := batcher.Add(ctx, newTestEvent("s1")); !errors.Is(err, notification.ErrNotifierClosed) {
		t.Errorf("Add() after Close error = %v, want ErrNotifierClosed", err)
	}
}

func TestBatcher_ConfigDefaults(t *testing.T) {
	t.Parallel()

	b := NewBatcher(BatcherConfig{})
	want := DefaultBatcherConfig()
	if b.config.MaxBatchSize != want.MaxBatchSize {
		t.Errorf("MaxBatchSize = %d, want %d", b.config.MaxBatchSize, want.MaxBatchSize)
	}
	if b.config.MaxWait != want.MaxWait {
		t.Errorf("MaxWait = %v, want %v", b.config.MaxWait, want.MaxWait)
	}
}
