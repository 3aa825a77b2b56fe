package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/event"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Database != "suggest" || cfg.Port != 5432 || cfg.Schema != "public" {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}

func TestConfig_ConnectionString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []ConfigOption
		want string
	}{
		{
			name: "defaults",
			want: "host=localhost port=5432 dbname=suggest user=postgres password= sslmode=disable",
		},
		{
			name: "fields",
			opts: []ConfigOption{WithHost("db.internal"), WithDatabase("journal"), WithCredentials("app", "pw")},
			want: "host=db.internal port=5432 dbname=journal user=app password=pw sslmode=disable",
		},
		{
			name: "dsn wins",
			opts: []ConfigOption{WithHost("ignored"), WithDSN("postgres://app@db/journal")},
			want: "postgres://app@db/journal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			for _, opt := range tt.opts {
				opt(&cfg)
			}
			if got := cfg.ConnectionString(); got != tt.want {
				t.Errorf("ConnectionString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventStore_tableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		schema string
		want   string
	}{
		{"", `"public".suggest_events`},
		{"editor", `"editor".suggest_events`},
		{`we"ird`, `"we""ird".suggest_events`},
	}

	for _, tt := range tests {
		if got := NewEventStore(nil, tt.schema).tableName(); got != tt.want {
			t.Errorf("tableName() with schema %q = %s, want %s", tt.schema, got, tt.want)
		}
	}
}

func TestEventStore_AppendValidatesFirst(t *testing.T) {
	t.Parallel()

	s := NewEventStore(nil, "")
	ctx := context.Background()

	if err := s.Append(ctx); err != nil {
		t.Errorf("Append() with no events error = %v", err)
	}
	if err := s.Append(ctx, event.Event{SessionID: "s"}); !errors.Is(err, event.ErrInvalidEvent) {
		t.Errorf("Append(no type) error = %v, want ErrInvalidEvent", err)
	}
	if err := s.Append(ctx, event.Event{Type: event.TypeSessionEnded}); !errors.Is(err, event.ErrInvalidEvent) {
		t.Errorf("Append(no session) error = %v, want ErrInvalidEvent", err)
	}
}

func TestEventStore_wrapError(t *testing.T) {
	t.Parallel()

	s := NewEventStore(nil, "")
	if s.wrapError(nil) != nil {
		t.Error("wrapError(nil) should be nil")
	}
	if err := s.wrapError(context.DeadlineExceeded); !errors.Is(err, ErrOperationTimeout) {
		t.Errorf("wrapError(deadline) = %v", err)
	}
	if err := s.wrapError(errors.New("boom")); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("wrapError(other) = %v", err)
	}
}

// TestEventStore_Postgres runs against SUGGEST_TEST_POSTGRES_DSN.
func TestEventStore_Postgres(t *testing.T) {
	dsn := os.Getenv("SUGGEST_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SUGGEST_TEST_POSTGRES_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := Open(ctx, DefaultConfig(), WithDSN(dsn))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	session := "pg-" + time.Now().Format("150405.000000")
	defer func() { _ = store.DeleteSession(context.Background(), session) }()

	events := []event.Event{
		{SessionID: session, Type: event.TypeSuggestionPresented, Timestamp: time.Now(), Payload: []byte(`{"n": 1}`)},
		{SessionID: session, Type: event.TypeSessionEnded, Timestamp: time.Now(), Payload: []byte(`{}`)},
	}
	if err := store.Append(ctx, events...); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append(ctx, events[0]); err != nil {
		t.Fatalf("second Append failed: %v", err)
	}

	loaded, err := store.LoadEventsFrom(ctx, session, 2)
	if err != nil {
		t.Fatalf("LoadEventsFrom failed: %v", err)
	}
	if len(loaded) != 2 || loaded[0].Sequence != 2 || loaded[1].Sequence != 3 {
		t.Fatalf("LoadEventsFrom = %+v", loaded)
	}

	count, err := store.CountEvents(ctx, session)
	if err != nil || count != 3 {
		t.Errorf("CountEvents = %d, %v; want 3", count, err)
	}
}
