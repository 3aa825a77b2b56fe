package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/suggest-go/domain/action"
)

// Run-to-cursor phases.
const (
	RunToCursorIdle Phase = "idle"

	// RunToCursorPaused means the debugger paused with no breakpoint tracked.
	RunToCursorPaused Phase = "paused"

	// RunToCursorTracked means a breakpoint was added outside a pause.
	RunToCursorTracked Phase = "tracked"

	// RunToCursorArmed means a breakpoint was added while paused.
	RunToCursorArmed Phase = "armed"

	// RunToCursorOnBreakpoint means execution then stopped on that breakpoint.
	RunToCursorOnBreakpoint Phase = "on_breakpoint"
)

// Run-to-cursor events. EventBreakpointAdded carries a BreakpointMark and
// EventBreakpointHit an action.Position.
const (
	EventPaused          statekit.EventType = "PAUSED"
	EventBreakpointAdded statekit.EventType = "BREAKPOINT_ADDED"
	EventBreakpointHit   statekit.EventType = "BREAKPOINT_HIT"
)

// BreakpointMark is the payload of EventBreakpointAdded.
type BreakpointMark struct {
	Position action.Position
	Millis   int64
}

// RunToCursorContext holds the tracked breakpoint.
type RunToCursorContext struct {
	Breakpoint  *action.Position
	AddedMillis int64
}

// NewRunToCursorMachine creates the statechart of the run-to-cursor detector.
func NewRunToCursorMachine() (*statekit.MachineConfig[*RunToCursorContext], error) {
	idle := statekit.StateID(RunToCursorIdle)
	paused := statekit.StateID(RunToCursorPaused)
	tracked := statekit.StateID(RunToCursorTracked)
	armed := statekit.StateID(RunToCursorArmed)
	onBreakpoint := statekit.StateID(RunToCursorOnBreakpoint)

	return statekit.NewMachine[*RunToCursorContext]("run_to_cursor").
		WithInitial(idle).
		WithContext(&RunToCursorContext{}).
		WithAction("trackBreakpoint", trackBreakpoint).
		WithAction("clearBreakpoint", clearBreakpoint).
		WithGuard("onTrackedLine", guardOnTrackedLine).
		State(idle).
		On(EventPaused).Target(paused).
		On(EventBreakpointAdded).Target(tracked).Do("trackBreakpoint").
		Done().
		State(paused).
		On(EventBreakpointAdded).Target(armed).Do("trackBreakpoint").
		On(EventReset).Target(idle).Do("clearBreakpoint").
		Done().
		State(tracked).
		On(EventPaused).Target(paused).Do("clearBreakpoint").
		On(EventReset).Target(idle).Do("clearBreakpoint").
		Done().
		State(armed).
		On(EventBreakpointHit).Target(onBreakpoint).Guard("onTrackedLine").
		On(EventPaused).Target(paused).Do("clearBreakpoint").
		On(EventReset).Target(idle).Do("clearBreakpoint").
		Done().
		State(onBreakpoint).
		On(EventPaused).Target(paused).Do("clearBreakpoint").
		On(EventReset).Target(idle).Do("clearBreakpoint").
		Done().
		Build()
}

// RunToCursorTracker tracks the breakpoint dance run-to-cursor replaces.
type RunToCursorTracker = Tracker[RunToCursorContext]

// NewRunToCursorTracker creates a started tracker in RunToCursorIdle.
func NewRunToCursorTracker() (*RunToCursorTracker, error) {
	machine, err := NewRunToCursorMachine()
	if err != nil {
		return nil, err
	}
	return newTracker(machine, &RunToCursorContext{}, RunToCursorIdle), nil
}

func trackBreakpoint(ctx **RunToCursorContext, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	if m, ok := event.Payload.(BreakpointMark); ok {
		pos := m.Position
		(*ctx).Breakpoint = &pos
		(*ctx).AddedMillis = m.Millis
	}
}

func clearBreakpoint(ctx **RunToCursorContext, _ statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	**ctx = RunToCursorContext{}
}

// guardOnTrackedLine admits a pause on the tracked breakpoint's line. Guards
// receive the context by value; our context is a pointer.
func guardOnTrackedLine(ctx *RunToCursorContext, event statekit.Event) bool {
	if ctx == nil {
		return false
	}
	pos, ok := event.Payload.(action.Position)
	if !ok {
		return false
	}
	return action.SameLine(&pos, ctx.Breakpoint)
}
