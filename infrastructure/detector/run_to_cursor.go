package detector

import (
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/action"
	"github.com/felixgeelhaar/suggest-go/domain/detector"
	"github.com/felixgeelhaar/suggest-go/domain/history"
	"github.com/felixgeelhaar/suggest-go/domain/language"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
	"github.com/felixgeelhaar/suggest-go/infrastructure/statemachine"
)

const (
	runToCursorMessage = "Why not use Run to Cursor? It resumes the program and stops at the caret without a temporary breakpoint."
	runToCursorDocURL  = "https://www.jetbrains.com/help/idea/stepping-through-the-program.html#run-to-cursor"

	// DefaultRunToCursorWindow is the maximum delay between adding and
	// removing the breakpoint.
	DefaultRunToCursorWindow = 5000 * time.Millisecond
)

// RunToCursor detects a breakpoint added while paused, hit, and removed
// right away: the manual version of run to cursor.
type RunToCursor struct {
	tracker *statemachine.RunToCursorTracker
	window  time.Duration
}

// RunToCursorOption configures the run-to-cursor detector.
type RunToCursorOption func(*RunToCursor)

// WithRunToCursorWindow sets the maximum delay between adding and removing
// the breakpoint.
func WithRunToCursorWindow(d time.Duration) RunToCursorOption {
	return func(r *RunToCursor) {
		r.window = d
	}
}

// NewRunToCursor creates a run-to-cursor detector.
func NewRunToCursor(opts ...RunToCursorOption) (*RunToCursor, error) {
	tracker, err := statemachine.NewRunToCursorTracker()
	if err != nil {
		return nil, err
	}
	r := &RunToCursor{
		tracker: tracker,
		window:  DefaultRunToCursorWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Descriptor implements detector.Detector.
func (r *RunToCursor) Descriptor() detector.Descriptor {
	return detector.Descriptor{
		ID:          IDRunToCursor,
		DisplayName: "Run to Cursor",
		Languages:   []string{language.AnyLanguage},
	}
}

// Phase returns the current tracking phase.
func (r *RunToCursor) Phase() statemachine.Phase {
	return r.tracker.Phase()
}

// Chart describes the statechart the detector tracks.
func (r *RunToCursor) Chart() statemachine.Chart {
	return statemachine.RunToCursorChart()
}

// Reset implements detector.Detector.
func (r *RunToCursor) Reset() {
	r.tracker.Reset()
}

// Detect implements detector.Detector. The capability is not consulted.
func (r *RunToCursor) Detect(actions *history.History, _ language.Capability) suggestion.Suggestion {
	last, ok := actions.Last()
	if !ok || last.Position == nil {
		return suggestion.None
	}

	switch last.Kind {
	case action.KindDebugPaused:
		r.paused(*last.Position)
	case action.KindBreakpointAdded:
		r.breakpointAdded(*last.Position, last.Millis())
	case action.KindBreakpointRemoved:
		return r.breakpointRemoved(*last.Position, last.Millis())
	}
	return suggestion.None
}

func (r *RunToCursor) paused(pos action.Position) {
	phase := r.tracker.Phase()
	debugging := phase == statemachine.RunToCursorPaused ||
		phase == statemachine.RunToCursorArmed ||
		phase == statemachine.RunToCursorOnBreakpoint

	if debugging && action.SameLine(&pos, r.tracker.Context().Breakpoint) {
		if phase == statemachine.RunToCursorArmed {
			r.tracker.Fire(statemachine.EventBreakpointHit, pos)
		}
		return
	}

	// Any other pause starts over from a clean paused state.
	if phase != statemachine.RunToCursorPaused {
		r.tracker.Fire(statemachine.EventPaused, nil)
	}
}

func (r *RunToCursor) breakpointAdded(pos action.Position, millis int64) {
	if r.tracker.Context().Breakpoint != nil {
		// A second breakpoint makes the intent ambiguous.
		r.tracker.Reset()
		return
	}
	r.tracker.Fire(statemachine.EventBreakpointAdded, statemachine.BreakpointMark{
		Position: pos,
		Millis:   millis,
	})
}

func (r *RunToCursor) breakpointRemoved(pos action.Position, millis int64) suggestion.Suggestion {
	ctx := r.tracker.Context()
	matched := r.tracker.Is(statemachine.RunToCursorOnBreakpoint) &&
		action.SameLine(&pos, ctx.Breakpoint) &&
		millis-ctx.AddedMillis <= r.window.Milliseconds()
	r.tracker.Reset()
	if !matched {
		return suggestion.None
	}
	return suggestion.NewDocumentation(runToCursorMessage, IDRunToCursor, runToCursorDocURL)
}

var _ detector.Detector = (*RunToCursor)(nil)
