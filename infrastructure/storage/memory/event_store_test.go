package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/event"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/memory"
)

func presented(sessionID string) event.Event {
	return event.Event{
		SessionID: sessionID,
		Type:      event.TypeSuggestionPresented,
		Timestamp: time.Now(),
	}
}

func TestNewEventStore(t *testing.T) {
	t.Parallel()

	store := memory.NewEventStore()
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for new store", store.Len())
	}
}

func TestEventStore_Append(t *testing.T) {
	t.Parallel()

	t.Run("assigns ids and per-session sequences", func(t *testing.T) {
		t.Parallel()

		store := memory.NewEventStore()
		ctx := context.Background()

		err := store.Append(ctx, presented("s1"), presented("s2"), presented("s1"))
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		s1, _ := store.LoadEvents(ctx, "s1")
		if len(s1) != 2 {
			t.Fatalf("LoadEvents(s1) len = %d, want 2", len(s1))
		}
		if s1[0].Sequence != 1 || s1[1].Sequence != 2 {
			t.Errorf("sequences = %d, %d, want 1, 2", s1[0].Sequence, s1[1].Sequence)
		}
		if s1[0].ID == "" || s1[0].ID == s1[1].ID {
			t.Errorf("ids = %q, %q, want distinct non-empty", s1[0].ID, s1[1].ID)
		}

		s2, _ := store.LoadEvents(ctx, "s2")
		if len(s2) != 1 || s2[0].Sequence != 1 {
			t.Errorf("LoadEvents(s2) = %+v", s2)
		}
	})

	t.Run("keeps caller id", func(t *testing.T) {
		t.Parallel()

		store := memory.NewEventStore()
		e := presented("s1")
		e.ID = "fixed"

		if err := store.Append(context.Background(), e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		got, _ := store.LoadEvents(context.Background(), "s1")
		if got[0].ID != "fixed" {
			t.Errorf("ID = %q, want fixed", got[0].ID)
		}
	})

	t.Run("rejects invalid events without partial writes", func(t *testing.T) {
		t.Parallel()

		store := memory.NewEventStore()
		err := store.Append(context.Background(), presented("s1"), event.Event{SessionID: "s1"})
		if !errors.Is(err, event.ErrInvalidEvent) {
			t.Fatalf("Append() error = %v, want ErrInvalidEvent", err)
		}
		if store.Len() != 0 {
			t.Errorf("Len() = %d, want 0", store.Len())
		}

		err = store.Append(context.Background(), event.Event{Type: event.TypeSessionEnded})
		if !errors.Is(err, event.ErrInvalidEvent) {
			t.Errorf("Append() without session error = %v, want ErrInvalidEvent", err)
		}
	})

	t.Run("returns error for cancelled context", func(t *testing.T) {
		t.Parallel()

		store := memory.NewEventStore()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := store.Append(ctx, presented("s1")); err == nil {
			t.Error("Append() should return error for cancelled context")
		}
	})
}

func TestEventStore_LoadEventsFrom(t *testing.T) {
	t.Parallel()

	store := memory.NewEventStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = store.Append(ctx, presented("s1"))
	}

	got, err := store.LoadEventsFrom(ctx, "s1", 4)
	if err != nil {
		t.Fatalf("LoadEventsFrom() error = %v", err)
	}
	if len(got) != 2 || got[0].Sequence != 4 {
		t.Errorf("LoadEventsFrom(4) = %d events starting at %d", len(got), got[0].Sequence)
	}

	missing, err := store.LoadEvents(ctx, "unknown")
	if err != nil {
		t.Fatalf("LoadEvents() error = %v", err)
	}
	if missing == nil || len(missing) != 0 {
		t.Errorf("LoadEvents(unknown) = %v, want empty slice", missing)
	}
}

func TestEventStore_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("receives new events for its session", func(t *testing.T) {
		t.Parallel()

		store := memory.NewEventStore()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch, err := store.Subscribe(ctx, "s1")
		if err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}

		_ = store.Append(context.Background(), presented("s2"), presented("s1"))

		select {
		case e := <-ch:
			if e.SessionID != "s1" {
				t.Errorf("received event for %s, want s1", e.SessionID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Error("did not receive event")
		}
	})

	t.Run("closes on delete", func(t *testing.T) {
		t.Parallel()

		store := memory.NewEventStore()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch, _ := store.Subscribe(ctx, "s1")
		_ = store.Append(ctx, presented("s1"))
		if err := store.DeleteSession(ctx, "s1"); err != nil {
			t.Fatalf("DeleteSession() error = %v", err)
		}

		<-ch
		if _, ok := <-ch; ok {
			t.Error("channel should be closed after DeleteSession")
		}
	})

	t.Run("returns error for cancelled context", func(t *testing.T) {
		t.Parallel()

		store := memory.NewEventStore()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := store.Subscribe(ctx, "s1"); err == nil {
			t.Error("Subscribe() should return error for cancelled context")
		}
	})
}

func TestEventStore_SessionsAndClear(t *testing.T) {
	t.Parallel()

	store := memory.NewEventStore()
	ctx := context.Background()

	_ = store.Append(ctx, presented("a"), presented("b"), presented("a"))

	count, _ := store.CountEvents(ctx, "a")
	if count != 2 {
		t.Errorf("CountEvents(a) = %d, want 2", count)
	}

	sessions, _ := store.ListSessions(ctx)
	if len(sessions) != 2 {
		t.Errorf("ListSessions() len = %d, want 2", len(sessions))
	}

	_ = store.DeleteSession(ctx, "a")
	if store.Len() != 1 {
		t.Errorf("Len() after delete = %d, want 1", store.Len())
	}

	_ = store.Append(ctx, presented("a"))
	got, _ := store.LoadEvents(ctx, "a")
	if got[0].Sequence != 1 {
		t.Errorf("sequence after delete = %d, want 1", got[0].Sequence)
	}

	store.Clear()
	if store.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", store.Len())
	}
}
