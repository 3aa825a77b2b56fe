package language

import (
	"sync"
	"testing"
)

func TestDefaultRegistry_Resolve(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()

	tests := []struct {
		id        string
		wantOK    bool
		wantCanon string
	}{
		{"JAVA", true, "JAVA"},
		{"kotlin", true, "kotlin"},
		{"ECMAScript 6", true, "ECMAScript 6"},
		{"Python", true, "Python"},
		{"JavaScript", true, "ECMAScript 6"},
		{"TypeScript", true, "ECMAScript 6"},
		{"Rust", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()

			c, ok := r.Resolve(tt.id)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
			}
			if ok && c == nil {
				t.Fatalf("Resolve(%q) returned nil capability", tt.id)
			}
			canon, _ := r.Canonical(tt.id)
			if canon != tt.wantCanon {
				t.Errorf("Canonical(%q) = %q, want %q", tt.id, canon, tt.wantCanon)
			}
		})
	}
}

func TestRegistry_ExactBeatsDialect(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	base := JavaScript()
	ts := NewKindTable("TypeScript", KindSpec{})
	r.Register("ECMAScript 6", base)
	r.RegisterDialect("TypeScript", "ECMAScript 6")
	r.Register("TypeScript", ts)

	c, ok := r.Resolve("TypeScript")
	if !ok || c != ts {
		t.Errorf("Resolve(TypeScript) = %v, want the registered TypeScript table", c)
	}
}

func TestRegistry_DialectWithoutBase(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterDialect("JSX", "ECMAScript 6")
	if _, ok := r.Resolve("JSX"); ok {
		t.Error("dialect of an unregistered base should not resolve")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Register("JAVA", Java())
		}()
		go func() {
			defer wg.Done()
			r.Resolve("JAVA")
		}()
	}
	wg.Wait()

	if len(r.IDs()) != 1 {
		t.Errorf("IDs() = %v, want one id", r.IDs())
	}
}
