package notification

import (
	"testing"

	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
)

func TestSuggestionEvent(t *testing.T) {
	t.Parallel()

	s := suggestion.NewDocumentation("Use run to cursor", "run_to_cursor", "https://example.test/docs")
	e, err := SuggestionEvent(suggestion.Session{ID: "s1", Name: "demo"}, s)
	if err != nil {
		t.Fatalf("SuggestionEvent() error = %v", err)
	}

	if e.ID == "" {
		t.Error("ID should be set")
	}
	if e.Type != EventSuggestionPresented {
		t.Errorf("Type = %s, want %s", e.Type, EventSuggestionPresented)
	}
	if e.SessionID != "s1" {
		t.Errorf("SessionID = %s, want s1", e.SessionID)
	}

	var p SuggestionPayload
	if err := e.DecodePayload(&p); err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	want := SuggestionPayload{
		SuggestionID: s.ID,
		DetectorID:   "run_to_cursor",
		Kind:         suggestion.KindDocumentation,
		Message:      "Use run to cursor",
		Link:         "https://example.test/docs",
		SessionName:  "demo",
	}
	if p != want {
		t.Errorf("payload = %+v, want %+v", p, want)
	}
}

func TestNewEvent_UnmarshalablePayload(t *testing.T) {
	t.Parallel()

	if _, err := NewEvent("id", EventSessionEnded, "s1", make(chan int)); err == nil {
		t.Error("NewEvent() should fail for a channel payload")
	}
}

func TestDecodePayload_Nil(t *testing.T) {
	t.Parallel()

	e := &Event{}
	var p SuggestionPayload
	if err := e.DecodePayload(&p); err != nil {
		t.Errorf("DecodePayload() error = %v", err)
	}
}

func TestFilters(t *testing.T) {
	t.Parallel()

	unwrap, _ := SuggestionEvent(suggestion.Session{ID: "s1"}, suggestion.NewTip("m", "unwrap", "Unwrap.html"))
	files, _ := SuggestionEvent(suggestion.Session{ID: "s1"}, suggestion.NewTip("m", "file_structure", "FileStructurePopup.html"))
	ended, _ := NewEvent("id", EventSessionEnded, "s1", struct{}{})

	tests := []struct {
		name   string
		filter EventFilter
		event  *Event
		want   bool
	}{
		{"type match", FilterByType(EventSuggestionPresented), unwrap, true},
		{"type mismatch", FilterByType(EventSuggestionPresented), ended, false},
		{"detector match", FilterByDetector("unwrap"), unwrap, true},
		{"detector mismatch", FilterByDetector("unwrap"), files, false},
		{"detector on non-suggestion", FilterByDetector("unwrap"), ended, false},
		{"combined", CombineFilters(FilterByType(EventSuggestionPresented), FilterByDetector("file_structure")), files, true},
		{"combined fails", CombineFilters(FilterByType(EventSessionEnded), FilterByDetector("file_structure")), files, false},
		{"empty combination", CombineFilters(), ended, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.filter(tt.event); got != tt.want {
				t.Errorf("filter() = %v, want %v", got, tt.want)
			}
		})
	}
}
