package statemachine

import "github.com/felixgeelhaar/statekit"

// Transition is one edge of a detector statechart.
type Transition struct {
	From   Phase              `json:"from"`
	Event  statekit.EventType `json:"event"`
	To     Phase              `json:"to"`
	Guard  string             `json:"guard,omitempty"`
	Action string             `json:"action,omitempty"`
}

// Chart describes a detector statechart for inspection. It mirrors the
// machine built by the matching New...Machine function.
type Chart struct {
	Name        string       `json:"name"`
	Initial     Phase        `json:"initial"`
	Phases      []Phase      `json:"phases"`
	Transitions []Transition `json:"transitions"`
}

// UnwrapChart describes NewUnwrapMachine.
func UnwrapChart() Chart {
	return Chart{
		Name:    "unwrap",
		Initial: UnwrapIdle,
		Phases:  []Phase{UnwrapIdle, UnwrapAwaitingStatementStart, UnwrapAwaitingCloseBrace},
		Transitions: []Transition{
			{From: UnwrapIdle, Event: EventCloseBraceDeleted, To: UnwrapAwaitingStatementStart, Action: "recordStatementStart"},
			{From: UnwrapIdle, Event: EventStatementStartDeleted, To: UnwrapAwaitingCloseBrace, Action: "recordCloseBrace"},
			{From: UnwrapAwaitingStatementStart, Event: EventReset, To: UnwrapIdle, Action: "clearUnwrap"},
			{From: UnwrapAwaitingCloseBrace, Event: EventReset, To: UnwrapIdle, Action: "clearUnwrap"},
		},
	}
}

// RunToCursorChart describes NewRunToCursorMachine.
func RunToCursorChart() Chart {
	return Chart{
		Name:    "run_to_cursor",
		Initial: RunToCursorIdle,
		Phases: []Phase{
			RunToCursorIdle, RunToCursorPaused, RunToCursorTracked,
			RunToCursorArmed, RunToCursorOnBreakpoint,
		},
		Transitions: []Transition{
			{From: RunToCursorIdle, Event: EventPaused, To: RunToCursorPaused},
			{From: RunToCursorIdle, Event: EventBreakpointAdded, To: RunToCursorTracked, Action: "trackBreakpoint"},
			{From: RunToCursorPaused, Event: EventBreakpointAdded, To: RunToCursorArmed, Action: "trackBreakpoint"},
			{From: RunToCursorPaused, Event: EventReset, To: RunToCursorIdle, Action: "clearBreakpoint"},
			{From: RunToCursorTracked, Event: EventPaused, To: RunToCursorPaused, Action: "clearBreakpoint"},
			{From: RunToCursorTracked, Event: EventReset, To: RunToCursorIdle, Action: "clearBreakpoint"},
			{From: RunToCursorArmed, Event: EventBreakpointHit, To: RunToCursorOnBreakpoint, Guard: "onTrackedLine"},
			{From: RunToCursorArmed, Event: EventPaused, To: RunToCursorPaused, Action: "clearBreakpoint"},
			{From: RunToCursorArmed, Event: EventReset, To: RunToCursorIdle, Action: "clearBreakpoint"},
			{From: RunToCursorOnBreakpoint, Event: EventPaused, To: RunToCursorPaused, Action: "clearBreakpoint"},
			{From: RunToCursorOnBreakpoint, Event: EventReset, To: RunToCursorIdle, Action: "clearBreakpoint"},
		},
	}
}

// PathTo returns the shortest event sequence leading from the initial phase
// to p, and false when p is unreachable.
func (c Chart) PathTo(p Phase) ([]statekit.EventType, bool) {
	type step struct {
		phase Phase
		path  []statekit.EventType
	}
	seen := map[Phase]bool{c.Initial: true}
	queue := []step{{phase: c.Initial}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.phase == p {
			return cur.path, true
		}
		for _, t := range c.Transitions {
			if t.From != cur.phase || seen[t.To] {
				continue
			}
			seen[t.To] = true
			path := append(append([]statekit.EventType(nil), cur.path...), t.Event)
			queue = append(queue, step{phase: t.To, path: path})
		}
	}
	return nil, false
}
