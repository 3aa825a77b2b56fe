package statemachine

import (
	"testing"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/suggest-go/domain/action"
)

var chartLine = action.Position{File: "Main.kt", Line: 3}

// payloadFor returns a payload every guard of the charts admits.
func payloadFor(e statekit.EventType) any {
	switch e {
	case EventCloseBraceDeleted, EventStatementStartDeleted:
		return Mark{Offset: 10, Millis: 1}
	case EventBreakpointAdded:
		return BreakpointMark{Position: chartLine, Millis: 1}
	case EventBreakpointHit:
		return chartLine
	default:
		return nil
	}
}

type firer interface {
	Fire(event statekit.EventType, payload any) Phase
}

// checkChart fires every transition of c on a fresh tracker and compares
// the resulting phase with the chart.
func checkChart(t *testing.T, c Chart, newTracker func() firer) {
	t.Helper()

	phases := make(map[Phase]bool, len(c.Phases))
	for _, p := range c.Phases {
		if phases[p] {
			t.Errorf("%s: duplicate phase %s", c.Name, p)
		}
		phases[p] = true
	}

	for _, tr := range c.Transitions {
		if !phases[tr.From] || !phases[tr.To] {
			t.Errorf("%s: transition %+v uses an undeclared phase", c.Name, tr)
			continue
		}

		path, ok := c.PathTo(tr.From)
		if !ok {
			t.Errorf("%s: phase %s unreachable", c.Name, tr.From)
			continue
		}

		tracker := newTracker()
		for _, e := range path {
			tracker.Fire(e, payloadFor(e))
		}
		if got := tracker.Fire(tr.Event, payloadFor(tr.Event)); got != tr.To {
			t.Errorf("%s: %s --%s--> %s, chart says %s", c.Name, tr.From, tr.Event, got, tr.To)
		}
	}
}

func TestUnwrapChart_MatchesMachine(t *testing.T) {
	t.Parallel()

	checkChart(t, UnwrapChart(), func() firer {
		tracker, err := NewUnwrapTracker()
		if err != nil {
			t.Fatalf("NewUnwrapTracker() error = %v", err)
		}
		return tracker
	})
}

func TestRunToCursorChart_MatchesMachine(t *testing.T) {
	t.Parallel()

	checkChart(t, RunToCursorChart(), func() firer {
		tracker, err := NewRunToCursorTracker()
		if err != nil {
			t.Fatalf("NewRunToCursorTracker() error = %v", err)
		}
		return tracker
	})
}

func TestChart_PathTo(t *testing.T) {
	t.Parallel()

	c := RunToCursorChart()

	path, ok := c.PathTo(RunToCursorOnBreakpoint)
	if !ok {
		t.Fatal("on_breakpoint should be reachable")
	}
	want := []statekit.EventType{EventPaused, EventBreakpointAdded, EventBreakpointHit}
	if len(path) != len(want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("path[%d] = %s, want %s", i, path[i], want[i])
		}
	}

	if path, ok := c.PathTo(RunToCursorIdle); !ok || len(path) != 0 {
		t.Errorf("PathTo(initial) = %v, %v", path, ok)
	}
	if _, ok := c.PathTo("missing"); ok {
		t.Error("undeclared phase should be unreachable")
	}
}
