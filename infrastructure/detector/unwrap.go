package detector

import (
	"regexp"
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/action"
	"github.com/felixgeelhaar/suggest-go/domain/detector"
	"github.com/felixgeelhaar/suggest-go/domain/history"
	"github.com/felixgeelhaar/suggest-go/domain/language"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
	"github.com/felixgeelhaar/suggest-go/infrastructure/statemachine"
)

const (
	unwrapMessage     = "Why not use Unwrap? It removes the surrounding statement and keeps its body in one step."
	unwrapTipResource = "Unwrap.html"
	unwrapDocURL      = "https://www.jetbrains.com/help/idea/working-with-source-code.html#unwrap_remove_statement"

	// DefaultUnwrapWindow is the maximum delay between the two deletions.
	DefaultUnwrapWindow = 7000 * time.Millisecond
)

var statementStartPattern = regexp.MustCompile(`^[ \n]*(if|for|while)[ \n]*\(.*\)[ \n]*\{[ \n]*$`)

// Unwrap detects a block unwrapped by hand: the closing brace and the
// statement header deleted separately, in either order.
type Unwrap struct {
	tracker *statemachine.UnwrapTracker
	window  time.Duration
}

// UnwrapOption configures the unwrap detector.
type UnwrapOption func(*Unwrap)

// WithUnwrapWindow sets the maximum delay between the two deletions.
func WithUnwrapWindow(d time.Duration) UnwrapOption {
	return func(u *Unwrap) {
		u.window = d
	}
}

// NewUnwrap creates an unwrap detector.
func NewUnwrap(opts ...UnwrapOption) (*Unwrap, error) {
	tracker, err := statemachine.NewUnwrapTracker()
	if err != nil {
		return nil, err
	}
	u := &Unwrap{
		tracker: tracker,
		window:  DefaultUnwrapWindow,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// Descriptor implements detector.Detector.
func (u *Unwrap) Descriptor() detector.Descriptor {
	return detector.Descriptor{
		ID:          IDUnwrap,
		DisplayName: "Unwrap",
		Languages:   []string{"JAVA", "kotlin", "ECMAScript 6"},
	}
}

// Phase returns the current tracking phase.
func (u *Unwrap) Phase() statemachine.Phase {
	return u.tracker.Phase()
}

// Chart describes the statechart the detector tracks.
func (u *Unwrap) Chart() statemachine.Chart {
	return statemachine.UnwrapChart()
}

// Reset implements detector.Detector.
func (u *Unwrap) Reset() {
	u.tracker.Reset()
}

// Detect implements detector.Detector.
func (u *Unwrap) Detect(actions *history.History, lang language.Capability) suggestion.Suggestion {
	last, ok := actions.Last()
	if !ok || lang == nil || !last.Is(action.KindTextRemoved, action.PhaseBefore) || last.Fragment == nil {
		return suggestion.None
	}

	text := last.Fragment.Text
	switch {
	case text == "}":
		return u.closeBraceDeleted(last, lang)
	case statementStartPattern.MatchString(text):
		return u.statementStartDeleted(last, lang)
	default:
		u.tracker.Reset()
	}
	return suggestion.None
}

func (u *Unwrap) closeBraceDeleted(a action.Action, lang language.Capability) suggestion.Suggestion {
	switch u.tracker.Phase() {
	case statemachine.UnwrapIdle:
		u.armOnCloseBrace(a, lang)
	case statemachine.UnwrapAwaitingCloseBrace:
		ctx := u.tracker.Context()
		matched := u.fresh(ctx.LastChangeMillis, a.Millis()) && a.Caret == ctx.CloseBrace
		u.tracker.Reset()
		if matched {
			return u.suggest()
		}
	default:
		u.tracker.Reset()
	}
	return suggestion.None
}

func (u *Unwrap) statementStartDeleted(a action.Action, lang language.Capability) suggestion.Suggestion {
	switch u.tracker.Phase() {
	case statemachine.UnwrapIdle:
		u.armOnStatementStart(a, lang)
	case statemachine.UnwrapAwaitingStatementStart:
		ctx := u.tracker.Context()
		matched := u.fresh(ctx.LastChangeMillis, a.Millis()) && a.Fragment.ContentStart() == ctx.StatementStart
		u.tracker.Reset()
		if matched {
			return u.suggest()
		}
	default:
		u.tracker.Reset()
	}
	return suggestion.None
}

// armOnCloseBrace inspects the block the deleted brace closes. Only a
// non-empty block owned by an if, for or while statement arms the tracker.
func (u *Unwrap) armOnCloseBrace(a action.Action, lang language.Capability) {
	file := fileOf(a)
	if file == nil {
		return
	}
	brace := file.ElementAt(a.Caret)
	if brace == nil {
		return
	}
	block := brace.Parent()
	if block == nil || !lang.IsCodeBlock(block) || len(lang.Statements(block)) == 0 {
		return
	}
	statement := lang.EnclosingStatement(block)
	if !language.IsSurroundingStatement(lang, statement) {
		return
	}
	u.tracker.Fire(statemachine.EventCloseBraceDeleted, statemachine.Mark{
		Offset: statement.Start(),
		Millis: a.Millis(),
	})
}

// armOnStatementStart inspects the statement whose header is deleted and
// records where its closing brace will be once the header is gone.
func (u *Unwrap) armOnStatementStart(a action.Action, lang language.Capability) {
	file := fileOf(a)
	if file == nil {
		return
	}
	keyword := file.ElementAt(a.Fragment.ContentStart())
	if keyword == nil {
		return
	}
	statement := keyword.Parent()
	if !language.IsSurroundingStatement(lang, statement) {
		return
	}
	block := lang.BlockOf(statement)
	if block == nil || len(lang.Statements(block)) == 0 {
		return
	}
	u.tracker.Fire(statemachine.EventStatementStartDeleted, statemachine.Mark{
		Offset: statement.End() - len(a.Fragment.Text) - 1,
		Millis: a.Millis(),
	})
}

func (u *Unwrap) fresh(firstMillis, nowMillis int64) bool {
	return nowMillis-firstMillis <= u.window.Milliseconds()
}

func (u *Unwrap) suggest() suggestion.Suggestion {
	s := suggestion.NewTip(unwrapMessage, IDUnwrap, unwrapTipResource)
	s.DocURL = unwrapDocURL
	return s
}

var _ detector.Detector = (*Unwrap)(nil)
