package statemachine

import (
	"github.com/felixgeelhaar/statekit"
)

// Unwrap phases.
const (
	UnwrapIdle Phase = "idle"

	// UnwrapAwaitingStatementStart follows the deletion of a block's closing
	// brace; the header of the owning statement is expected next.
	UnwrapAwaitingStatementStart Phase = "awaiting_statement_start"

	// UnwrapAwaitingCloseBrace follows the deletion of a statement header;
	// the block's closing brace is expected next.
	UnwrapAwaitingCloseBrace Phase = "awaiting_close_brace"
)

// Unwrap events. Both carry a Mark payload.
const (
	EventCloseBraceDeleted     statekit.EventType = "CLOSE_BRACE_DELETED"
	EventStatementStartDeleted statekit.EventType = "STATEMENT_START_DELETED"
)

// UnwrapContext holds the offset the complementary deletion must hit.
type UnwrapContext struct {
	// StatementStart is the expected content start of the header deletion.
	StatementStart int

	// CloseBrace is the expected caret of the brace deletion.
	CloseBrace int

	// LastChangeMillis is when the first deletion happened.
	LastChangeMillis int64
}

func (c *UnwrapContext) clear() {
	*c = UnwrapContext{StatementStart: -1, CloseBrace: -1}
}

// NewUnwrapMachine creates the statechart of the unwrap detector.
func NewUnwrapMachine() (*statekit.MachineConfig[*UnwrapContext], error) {
	idle := statekit.StateID(UnwrapIdle)
	awaitingStart := statekit.StateID(UnwrapAwaitingStatementStart)
	awaitingBrace := statekit.StateID(UnwrapAwaitingCloseBrace)

	return statekit.NewMachine[*UnwrapContext]("unwrap").
		WithInitial(idle).
		WithContext(&UnwrapContext{}).
		WithAction("recordStatementStart", recordStatementStart).
		WithAction("recordCloseBrace", recordCloseBrace).
		WithAction("clearUnwrap", clearUnwrap).
		State(idle).
		On(EventCloseBraceDeleted).Target(awaitingStart).Do("recordStatementStart").
		On(EventStatementStartDeleted).Target(awaitingBrace).Do("recordCloseBrace").
		Done().
		State(awaitingStart).
		On(EventReset).Target(idle).Do("clearUnwrap").
		Done().
		State(awaitingBrace).
		On(EventReset).Target(idle).Do("clearUnwrap").
		Done().
		Build()
}

// UnwrapTracker tracks the two halves of a manual unwrap.
type UnwrapTracker = Tracker[UnwrapContext]

// NewUnwrapTracker creates a started tracker in UnwrapIdle.
func NewUnwrapTracker() (*UnwrapTracker, error) {
	machine, err := NewUnwrapMachine()
	if err != nil {
		return nil, err
	}
	ctx := &UnwrapContext{}
	ctx.clear()
	return newTracker(machine, ctx, UnwrapIdle), nil
}

// recordStatementStart stores the statement start a close brace deletion
// expects to be followed by. In statekit, actions receive a pointer to the
// context; our context is a pointer, so actions get **UnwrapContext.
func recordStatementStart(ctx **UnwrapContext, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	if m, ok := event.Payload.(Mark); ok {
		(*ctx).StatementStart = m.Offset
		(*ctx).LastChangeMillis = m.Millis
	}
}

func recordCloseBrace(ctx **UnwrapContext, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	if m, ok := event.Payload.(Mark); ok {
		(*ctx).CloseBrace = m.Offset
		(*ctx).LastChangeMillis = m.Millis
	}
}

func clearUnwrap(ctx **UnwrapContext, _ statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	(*ctx).clear()
}
