package application

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
	infralang "github.com/felixgeelhaar/suggest-go/infrastructure/language"
)

func newTestSessions(p suggestion.Presenter, stubs map[string]*stubDetector) *Sessions {
	return NewSessions(func(session suggestion.Session) (*Engine, error) {
		d := newStub("a")
		stubs[session.ID] = d
		return NewEngineWithOptions(
			WithSession(session),
			WithResolver(infralang.NewDefaultRegistry()),
			WithPresenter(p),
			WithDetectors(d),
		)
	})
}

func TestSessions_OpenGetClose(t *testing.T) {
	t.Parallel()

	stubs := make(map[string]*stubDetector)
	s := newTestSessions(&recordingPresenter{}, stubs)
	ctx := context.Background()

	e, err := s.Open(suggestion.Session{ID: "one", Name: "Main.java"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got, ok := s.Get("one"); !ok || got != e {
		t.Fatalf("Get() = %v, %v", got, ok)
	}
	if _, err := s.Open(suggestion.Session{ID: "one"}); !errors.Is(err, ErrSessionExists) {
		t.Errorf("second Open() error = %v, want ErrSessionExists", err)
	}

	e.OnAction(ctx, find(infralang.IDJava))

	if err := s.Close(ctx, "one"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if stubs["one"].resets != 1 {
		t.Errorf("detector resets = %d, want 1", stubs["one"].resets)
	}
	if e.History().Len() != 0 {
		t.Errorf("history len = %d, want 0", e.History().Len())
	}
	if _, ok := s.Get("one"); ok {
		t.Error("closed session still present")
	}
	if err := s.Close(ctx, "one"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Close(unknown) error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessions_Isolated(t *testing.T) {
	t.Parallel()

	stubs := make(map[string]*stubDetector)
	s := newTestSessions(&recordingPresenter{}, stubs)
	ctx := context.Background()

	a, _ := s.Open(suggestion.Session{ID: "a"})
	b, _ := s.Open(suggestion.Session{ID: "b"})

	a.OnAction(ctx, find(infralang.IDJava))
	a.OnAction(ctx, find(infralang.IDJava))
	b.OnAction(ctx, find(infralang.IDJava))

	if a.History().Len() != 2 || b.History().Len() != 1 {
		t.Errorf("history lens = %d, %d, want 2, 1", a.History().Len(), b.History().Len())
	}
	if ids := s.IDs(); len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("IDs() = %v", ids)
	}

	s.CloseAll(ctx)
	if len(s.IDs()) != 0 {
		t.Errorf("IDs() after CloseAll = %v", s.IDs())
	}
	if stubs["a"].resets != 1 || stubs["b"].resets != 1 {
		t.Error("CloseAll should end every session")
	}
}

func TestSessions_FactoryError(t *testing.T) {
	t.Parallel()

	s := NewSessions(func(suggestion.Session) (*Engine, error) {
		return NewEngine(EngineConfig{})
	})
	if _, err := s.Open(suggestion.Session{ID: "x"}); !errors.Is(err, ErrResolverRequired) {
		t.Errorf("Open() error = %v, want ErrResolverRequired", err)
	}
}
