package badger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/event"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/badger"
)

func newTestEventStore(t *testing.T) *badger.EventStore {
	t.Helper()

	store, err := badger.NewEventStore(badger.Config{InMemory: true})
	if err != nil {
		t.Fatalf("NewEventStore failed: %v", err)
	}
	return store
}

func presented(sessionID string) event.Event {
	return event.Event{
		SessionID: sessionID,
		Type:      event.TypeSuggestionPresented,
		Timestamp: time.Now(),
		Payload:   []byte(`{}`),
	}
}

func TestEventStore_AppendAndLoad(t *testing.T) {
	store := newTestEventStore(t)
	defer store.Close()

	ctx := context.Background()

	first := presented("session-1")
	first.Payload = []byte(`{"n":1}`)
	second := presented("session-1")
	second.Type = event.TypeSessionEnded

	if err := store.Append(ctx, first, second); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	loaded, err := store.LoadEvents(ctx, "session-1")
	if err != nil {
		t.Fatalf("LoadEvents failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 events, got %d", len(loaded))
	}
	if loaded[0].Sequence != 1 || loaded[1].Sequence != 2 {
		t.Errorf("sequences = %d, %d, want 1, 2", loaded[0].Sequence, loaded[1].Sequence)
	}
	if loaded[0].ID == "" {
		t.Error("expected ID to be assigned")
	}
	if loaded[1].Type != event.TypeSessionEnded {
		t.Errorf("expected type %s, got %s", event.TypeSessionEnded, loaded[1].Type)
	}
	if string(loaded[0].Payload) != `{"n":1}` {
		t.Errorf("payload = %s", loaded[0].Payload)
	}
}

func TestEventStore_SequencesArePerSession(t *testing.T) {
	store := newTestEventStore(t)
	defer store.Close()

	ctx := context.Background()

	if err := store.Append(ctx, presented("a"), presented("b"), presented("a")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append(ctx, presented("b")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	a, _ := store.LoadEvents(ctx, "a")
	b, _ := store.LoadEvents(ctx, "b")
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("expected 2 events each, got %d and %d", len(a), len(b))
	}
	if b[1].Sequence != 2 {
		t.Errorf("expected sequence 2 for second append, got %d", b[1].Sequence)
	}
}

func TestEventStore_LoadEventsFrom(t *testing.T) {
	store := newTestEventStore(t)
	defer store.Close()

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, presented("session-1")); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	loaded, err := store.LoadEventsFrom(ctx, "session-1", 3)
	if err != nil {
		t.Fatalf("LoadEventsFrom failed: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 events, got %d", len(loaded))
	}
	if loaded[0].Sequence != 3 {
		t.Errorf("expected first event sequence 3, got %d", loaded[0].Sequence)
	}
}

func TestEventStore_CountListDelete(t *testing.T) {
	store := newTestEventStore(t)
	defer store.Close()

	ctx := context.Background()

	for _, id := range []string{"session-a", "session-b", "session-c", "session-a"} {
		if err := store.Append(ctx, presented(id)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	count, err := store.CountEvents(ctx, "session-a")
	if err != nil {
		t.Fatalf("CountEvents failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 events, got %d", count)
	}

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Errorf("expected 3 sessions, got %d", len(sessions))
	}

	if err := store.DeleteSession(ctx, "session-a"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	count, err = store.CountEvents(ctx, "session-a")
	if err != nil {
		t.Fatalf("CountEvents after delete failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 events after delete, got %d", count)
	}
	sessions, _ = store.ListSessions(ctx)
	if len(sessions) != 2 {
		t.Errorf("expected 2 sessions after delete, got %d", len(sessions))
	}
}

func TestEventStore_Subscribe(t *testing.T) {
	store := newTestEventStore(t)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch1, err := store.Subscribe(ctx, "session-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	ch2, err := store.Subscribe(ctx, "session-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := store.Append(context.Background(), presented("session-2"), presented("session-1")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	for _, ch := range []<-chan event.Event{ch1, ch2} {
		select {
		case e := <-ch:
			if e.SessionID != "session-1" {
				t.Errorf("received event for %s", e.SessionID)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for event")
		}
	}
}

func TestEventStore_AppendInvalidEvent(t *testing.T) {
	store := newTestEventStore(t)
	defer store.Close()

	ctx := context.Background()

	tests := []struct {
		name string
		e    event.Event
	}{
		{"empty type", event.Event{SessionID: "s"}},
		{"empty session", event.Event{Type: event.TypeSessionEnded}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Append(ctx, presented("s"), tt.e)
			if !errors.Is(err, event.ErrInvalidEvent) {
				t.Fatalf("expected ErrInvalidEvent, got %v", err)
			}
		})
	}

	count, _ := store.CountEvents(ctx, "s")
	if count != 0 {
		t.Errorf("expected no partial append, got %d events", count)
	}
}

func TestEventStore_SharedDB(t *testing.T) {
	db, err := badger.Open(badger.DefaultConfig(), badger.WithInMemory())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	events := badger.NewEventStoreFromDB(db, "suggest:")
	cooldowns := badger.NewCooldownStoreFromDB(db, "suggest:")

	ctx := context.Background()
	if err := events.Append(ctx, presented("s")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := cooldowns.RecordFired(ctx, "unwrap", time.Now()); err != nil {
		t.Fatalf("RecordFired failed: %v", err)
	}

	if err := events.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := cooldowns.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// The shared database stays open after both stores close.
	if db.IsClosed() {
		t.Fatal("expected shared database to remain open")
	}
}
