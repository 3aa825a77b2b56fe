package application

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/event"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
)

// SessionSummary is what a session's event journal says happened.
type SessionSummary struct {
	SessionID  string
	Presented  []suggestion.Suggestion
	Suppressed map[event.SuppressReason]int
	Ended      bool
	HistoryLen int
	Start      time.Time
	End        time.Time
}

// Replay rebuilds session summaries from stored events.
type Replay struct {
	eventStore event.Store
}

// NewReplay creates a new replay over eventStore.
func NewReplay(eventStore event.Store) *Replay {
	return &Replay{
		eventStore: eventStore,
	}
}

// Summarize rebuilds the summary of a session from its event history.
func (r *Replay) Summarize(ctx context.Context, sessionID string) (*SessionSummary, error) {
	return r.SummarizeFrom(ctx, sessionID, 0)
}

// SummarizeFrom rebuilds the summary from a starting sequence.
func (r *Replay) SummarizeFrom(ctx context.Context, sessionID string, fromSeq uint64) (*SessionSummary, error) {
	events, err := r.eventStore.LoadEventsFrom(ctx, sessionID, fromSeq)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s", event.ErrSessionNotFound, sessionID)
	}

	return applyEvents(sessionID, events)
}

// applyEvents folds events into a summary.
func applyEvents(sessionID string, events []event.Event) (*SessionSummary, error) {
	summary := &SessionSummary{
		SessionID:  sessionID,
		Suppressed: make(map[event.SuppressReason]int),
		Start:      events[0].Timestamp,
		End:        events[len(events)-1].Timestamp,
	}

	for _, e := range events {
		switch e.Type {
		case event.TypeSuggestionPresented:
			var payload event.SuggestionPresentedPayload
			if err := e.UnmarshalPayload(&payload); err != nil {
				return nil, fmt.Errorf("unmarshal suggestion.presented: %w", err)
			}
			summary.Presented = append(summary.Presented, payload.Suggestion)

		case event.TypeSuggestionSuppressed:
			var payload event.SuggestionSuppressedPayload
			if err := e.UnmarshalPayload(&payload); err != nil {
				return nil, fmt.Errorf("unmarshal suggestion.suppressed: %w", err)
			}
			summary.Suppressed[payload.Reason]++

		case event.TypeSessionEnded:
			var payload event.SessionEndedPayload
			if err := e.UnmarshalPayload(&payload); err != nil {
				return nil, fmt.Errorf("unmarshal session.ended: %w", err)
			}
			summary.Ended = true
			summary.HistoryLen = payload.HistoryLen
		}
	}

	return summary, nil
}
