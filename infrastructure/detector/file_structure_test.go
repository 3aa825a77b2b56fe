package detector

import (
	"testing"

	"github.com/felixgeelhaar/suggest-go/domain/action"
	"github.com/felixgeelhaar/suggest-go/domain/history"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
	"github.com/felixgeelhaar/suggest-go/infrastructure/language"
)

func TestFileStructure_Descriptor(t *testing.T) {
	t.Parallel()

	d := NewFileStructure().Descriptor()
	if d.ID != IDFileStructure {
		t.Errorf("ID = %q, want %q", d.ID, IDFileStructure)
	}
	for _, lang := range []string{"JAVA", "kotlin", "Python", "ECMAScript 6"} {
		if !d.Supports(lang) {
			t.Errorf("Supports(%q) = false", lang)
		}
	}
}

func TestFileStructure_Detect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		query         *action.FindQuery
		caret         int
		previous      func(ed action.EditorRef) action.Action
		otherEditor   bool
		wantSuggested bool
	}{
		{
			name:          "case-insensitive match",
			method:        "fooBar",
			query:         &action.FindQuery{Text: "foo"},
			caret:         21,
			wantSuggested: true,
		},
		{
			name:          "case-insensitive match ignores case",
			method:        "fooBar",
			query:         &action.FindQuery{Text: "BAR"},
			caret:         21,
			wantSuggested: true,
		},
		{
			name:   "case-sensitive mismatch",
			method: "fooBar",
			query:  &action.FindQuery{Text: "BAR", CaseSensitive: true},
			caret:  21,
		},
		{
			name:   "name does not contain query",
			method: "baz",
			query:  &action.FindQuery{Text: "foo"},
			caret:  21,
		},
		{
			name:   "caret after whitespace",
			method: "fooBar",
			query:  &action.FindQuery{Text: "foo"},
			caret:  15,
		},
		{
			name:   "caret at file start",
			method: "fooBar",
			query:  &action.FindQuery{Text: "foo"},
			caret:  0,
		},
		{
			name:   "no find query",
			method: "fooBar",
			caret:  21,
		},
		{
			name:   "previous action is not find",
			method: "fooBar",
			query:  &action.FindQuery{Text: "foo"},
			caret:  21,
			previous: func(ed action.EditorRef) action.Action {
				return action.Escape(at(0), "JAVA", ed, 21)
			},
		},
		{
			name:        "find in another editor",
			method:      "fooBar",
			query:       &action.FindQuery{Text: "foo"},
			caret:       21,
			otherEditor: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ed := action.StrongRef(&fakeEditor{file: javaClass(tt.method), caret: tt.caret, query: tt.query})
			findEd := ed
			if tt.otherEditor {
				findEd = action.StrongRef(&fakeEditor{file: javaClass(tt.method)})
			}

			prev := action.Find(at(0), "JAVA", findEd)
			if tt.previous != nil {
				prev = tt.previous(ed)
			}

			results := feed(NewFileStructure(), language.Java(), prev, action.FocusGained(at(100), "JAVA", ed))
			if got := !results[1].IsNone(); got != tt.wantSuggested {
				t.Errorf("suggested = %v, want %v", got, tt.wantSuggested)
			}
		})
	}
}

func TestFileStructure_Suggestion(t *testing.T) {
	t.Parallel()

	ed := action.StrongRef(&fakeEditor{file: javaClass("fooBar"), caret: 21, query: &action.FindQuery{Text: "foo"}})
	results := feed(NewFileStructure(), language.Java(),
		action.Find(at(0), "JAVA", ed),
		action.FocusGained(at(100), "JAVA", ed),
	)

	s := results[1]
	if s.Kind != suggestion.KindTip {
		t.Fatalf("Kind = %q, want %q", s.Kind, suggestion.KindTip)
	}
	if s.TipResource != fileStructureTipResource {
		t.Errorf("TipResource = %q, want %q", s.TipResource, fileStructureTipResource)
	}
	if s.DetectorID != IDFileStructure {
		t.Errorf("DetectorID = %q, want %q", s.DetectorID, IDFileStructure)
	}
}

func TestFileStructure_ShortHistory(t *testing.T) {
	t.Parallel()

	ed := action.StrongRef(&fakeEditor{file: javaClass("fooBar"), caret: 21, query: &action.FindQuery{Text: "foo"}})
	h := history.New(0)
	h.Append(action.FocusGained(at(0), "JAVA", ed))

	if s := NewFileStructure().Detect(h, language.Java()); !s.IsNone() {
		t.Errorf("Detect() = %+v, want None", s)
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	detectors, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults() error = %v", err)
	}

	want := []string{IDUnwrap, IDRunToCursor, IDFileStructure}
	if len(detectors) != len(want) {
		t.Fatalf("len(Defaults()) = %d, want %d", len(detectors), len(want))
	}
	for i, d := range detectors {
		if got := d.Descriptor().ID; got != want[i] {
			t.Errorf("detector %d ID = %q, want %q", i, got, want[i])
		}
	}
}
