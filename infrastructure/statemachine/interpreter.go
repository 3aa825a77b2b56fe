// Package statemachine provides the statekit integration for detector phase
// tracking. Each stateful detector drives one tracker; the tracker owns the
// statechart and the context the chart's actions write to.
package statemachine

import (
	"github.com/felixgeelhaar/statekit"
)

// Phase is the current state of a tracker.
type Phase string

// Mark carries the offset and time of a recorded edit.
type Mark struct {
	Offset int
	Millis int64
}

// Tracker wraps a statekit interpreter and its context.
type Tracker[C any] struct {
	interp  *statekit.Interpreter[*C]
	ctx     *C
	initial Phase
}

func newTracker[C any](machine *statekit.MachineConfig[*C], ctx *C, initial Phase) *Tracker[C] {
	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **C) {
		*c = ctx
	})
	interp.Start()
	return &Tracker[C]{
		interp:  interp,
		ctx:     ctx,
		initial: initial,
	}
}

// Phase returns the current state.
func (t *Tracker[C]) Phase() Phase {
	return Phase(t.interp.State().Value)
}

// Is reports whether the tracker is in p.
func (t *Tracker[C]) Is(p Phase) bool {
	return t.interp.Matches(statekit.StateID(p))
}

// Idle reports whether the tracker is in its initial state.
func (t *Tracker[C]) Idle() bool {
	return t.Is(t.initial)
}

// Context returns the tracked data.
func (t *Tracker[C]) Context() *C {
	return t.ctx
}

// Fire sends event with payload and returns the resulting phase.
func (t *Tracker[C]) Fire(event statekit.EventType, payload any) Phase {
	t.interp.Send(statekit.Event{Type: event, Payload: payload})
	return t.Phase()
}

// Reset returns the tracker to its initial state and clears its context.
func (t *Tracker[C]) Reset() {
	if t.Idle() {
		return
	}
	t.Fire(EventReset, nil)
}

// Stop stops the interpreter.
func (t *Tracker[C]) Stop() {
	t.interp.Stop()
}

// EventReset returns every tracker to its initial state.
const EventReset statekit.EventType = "RESET"
