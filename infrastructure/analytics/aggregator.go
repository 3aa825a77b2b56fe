// Package analytics aggregates detector activity across journaled sessions.
package analytics

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/event"
)

// Journal is an event store that can enumerate its sessions.
type Journal interface {
	event.Store
	ListSessions(ctx context.Context) ([]string, error)
}

// Filter specifies which events count.
type Filter struct {
	// FromTime drops events before this time.
	FromTime time.Time

	// ToTime drops events after this time.
	ToTime time.Time

	// DetectorIDs restricts results to these detectors (empty means all).
	DetectorIDs []string
}

func (f Filter) includes(e event.Event) bool {
	if !f.FromTime.IsZero() && e.Timestamp.Before(f.FromTime) {
		return false
	}
	if !f.ToTime.IsZero() && e.Timestamp.After(f.ToTime) {
		return false
	}
	return true
}

func (f Filter) includesDetector(id string) bool {
	return len(f.DetectorIDs) == 0 || slices.Contains(f.DetectorIDs, id)
}

// DetectorStat is what the journal records about one detector.
type DetectorStat struct {
	DetectorID    string                       `json:"detector_id"`
	Presented     int                          `json:"presented"`
	Suppressed    map[event.SuppressReason]int `json:"suppressed,omitempty"`
	Sessions      int                          `json:"sessions"`
	LastPresented time.Time                    `json:"last_presented,omitzero"`
}

// SuppressedTotal returns the number of suppressions for every reason.
func (s DetectorStat) SuppressedTotal() int {
	n := 0
	for _, c := range s.Suppressed {
		n += c
	}
	return n
}

// Summary aggregates a whole journal.
type Summary struct {
	Sessions      int            `json:"sessions"`
	EndedSessions int            `json:"ended_sessions"`
	Presented     int            `json:"presented"`
	Suppressed    int            `json:"suppressed"`
	Detectors     []DetectorStat `json:"detectors"`
}

// Aggregator computes statistics from a journal.
type Aggregator struct {
	journal Journal
}

// NewAggregator creates a new aggregator over journal.
func NewAggregator(journal Journal) *Aggregator {
	return &Aggregator{journal: journal}
}

// Summary folds every session of the journal. Detectors are ordered by
// presentations, most first.
func (a *Aggregator) Summary(ctx context.Context, filter Filter) (Summary, error) {
	sessions, err := a.journal.ListSessions(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list sessions: %w", err)
	}

	var summary Summary
	stats := make(map[string]*DetectorStat)

	stat := func(id string) *DetectorStat {
		s, ok := stats[id]
		if !ok {
			s = &DetectorStat{DetectorID: id, Suppressed: make(map[event.SuppressReason]int)}
			stats[id] = s
		}
		return s
	}

	for _, sessionID := range sessions {
		events, err := a.journal.LoadEvents(ctx, sessionID)
		if err != nil {
			return Summary{}, fmt.Errorf("load events of %s: %w", sessionID, err)
		}

		seen := make(map[string]bool)
		counted := false

		for _, e := range events {
			if !filter.includes(e) {
				continue
			}
			if !counted {
				summary.Sessions++
				counted = true
			}

			switch e.Type {
			case event.TypeSuggestionPresented:
				var payload event.SuggestionPresentedPayload
				if err := e.UnmarshalPayload(&payload); err != nil {
					return Summary{}, fmt.Errorf("unmarshal suggestion.presented: %w", err)
				}
				id := payload.Suggestion.DetectorID
				if !filter.includesDetector(id) {
					continue
				}
				s := stat(id)
				s.Presented++
				if e.Timestamp.After(s.LastPresented) {
					s.LastPresented = e.Timestamp
				}
				summary.Presented++
				seen[id] = true

			case event.TypeSuggestionSuppressed:
				var payload event.SuggestionSuppressedPayload
				if err := e.UnmarshalPayload(&payload); err != nil {
					return Summary{}, fmt.Errorf("unmarshal suggestion.suppressed: %w", err)
				}
				id := payload.Suggestion.DetectorID
				if !filter.includesDetector(id) {
					continue
				}
				stat(id).Suppressed[payload.Reason]++
				summary.Suppressed++
				seen[id] = true

			case event.TypeSessionEnded:
				summary.EndedSessions++
			}
		}

		for id := range seen {
			stats[id].Sessions++
		}
	}

	summary.Detectors = make([]DetectorStat, 0, len(stats))
	for _, s := range stats {
		summary.Detectors = append(summary.Detectors, *s)
	}
	sort.Slice(summary.Detectors, func(i, j int) bool {
		a, b := summary.Detectors[i], summary.Detectors[j]
		if a.Presented != b.Presented {
			return a.Presented > b.Presented
		}
		return a.DetectorID < b.DetectorID
	})

	return summary, nil
}
