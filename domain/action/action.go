// Package action models the editor operations observed by the suggestion
// engine.
package action

import (
	"strings"
	"time"
)

// Kind discriminates the action variants.
type Kind string

const (
	// Clipboard actions
	KindCopy  Kind = "copy"
	KindCut   Kind = "cut"
	KindPaste Kind = "paste"

	// Editing actions
	KindBackspace    Kind = "backspace"
	KindTextInserted Kind = "text_inserted"
	KindTextRemoved  Kind = "text_removed"

	// Navigation and completion actions
	KindFind                 Kind = "find"
	KindCodeCompletion       Kind = "code_completion"
	KindCompletionChooseItem Kind = "completion_choose_item"
	KindEscape               Kind = "escape"
	KindFocusGained          Kind = "focus_gained"

	// Debugger actions
	KindBreakpointAdded   Kind = "breakpoint_added"
	KindBreakpointRemoved Kind = "breakpoint_removed"
	KindDebugPaused       Kind = "debug_paused"
)

// Phase tells whether an action was captured before or after the host
// performed it.
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseAfter  Phase = "after"
)

// TextFragment is a span of document text.
type TextFragment struct {
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Text  string `json:"text" yaml:"text"`
}

// ContentStart returns the offset of the first character of the fragment
// that is neither a space nor a newline.
func (f TextFragment) ContentStart() int {
	for i, r := range f.Text {
		if r != ' ' && r != '\n' {
			return f.Start + i
		}
	}
	return f.Start + len(f.Text)
}

// Position is a source location reported by the debugger.
type Position struct {
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
}

// SameLine reports whether two positions refer to the same line of the same
// file. A nil position matches nothing.
func SameLine(a, b *Position) bool {
	if a == nil || b == nil {
		return false
	}
	return a.File == b.File && a.Line == b.Line
}

// Action is one observed user operation. Actions are immutable once built;
// use the constructors in this package.
type Action struct {
	Kind     Kind
	Phase    Phase
	Time     time.Time
	Language string
	Editor   EditorRef

	// Command is the host command running when the action was captured.
	Command string

	Fragment *TextFragment
	Caret    int
	Text     string
	Position *Position
}

// Millis returns the action timestamp in Unix milliseconds.
func (a Action) Millis() int64 {
	return a.Time.UnixMilli()
}

// Supported reports whether the action carries a language tag.
func (a Action) Supported() bool {
	return a.Language != ""
}

// Is reports whether the action has the given kind and phase.
func (a Action) Is(kind Kind, phase Phase) bool {
	return a.Kind == kind && a.Phase == phase
}

// UndoRedo reports whether the action was captured while an undo or redo
// command was running.
func (a Action) UndoRedo() bool {
	return strings.HasPrefix(a.Command, "Undo") || strings.HasPrefix(a.Command, "Redo")
}

// Option customizes an action under construction.
type Option func(*Action)

// WithCommand records the host command name.
func WithCommand(name string) Option {
	return func(a *Action) {
		a.Command = name
	}
}

// WithPhase overrides the default phase of a constructor.
func WithPhase(p Phase) Option {
	return func(a *Action) {
		a.Phase = p
	}
}

func build(a Action, opts []Option) Action {
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// Copy is a copy of text to the clipboard.
func Copy(at time.Time, lang string, ed EditorRef, text string, opts ...Option) Action {
	return build(Action{Kind: KindCopy, Phase: PhaseAfter, Time: at, Language: lang, Editor: ed, Text: text}, opts)
}

// Cut is a cut of the selected fragment.
func Cut(at time.Time, lang string, ed EditorRef, fragment *TextFragment, opts ...Option) Action {
	a := Action{Kind: KindCut, Phase: PhaseAfter, Time: at, Language: lang, Editor: ed, Fragment: fragment}
	if fragment != nil {
		a.Text = fragment.Text
	}
	return build(a, opts)
}

// Paste is a paste of text at the caret.
func Paste(at time.Time, lang string, ed EditorRef, text string, caret int, opts ...Option) Action {
	return build(Action{Kind: KindPaste, Phase: PhaseAfter, Time: at, Language: lang, Editor: ed, Text: text, Caret: caret}, opts)
}

// Backspace is a backspace press, with the selection it removes if any.
func Backspace(at time.Time, lang string, ed EditorRef, selection *TextFragment, caret int, opts ...Option) Action {
	return build(Action{Kind: KindBackspace, Phase: PhaseAfter, Time: at, Language: lang, Editor: ed, Fragment: selection, Caret: caret}, opts)
}

// TextInserted is text typed or inserted into the document.
func TextInserted(at time.Time, lang string, ed EditorRef, fragment TextFragment, caret int, opts ...Option) Action {
	return build(Action{Kind: KindTextInserted, Phase: PhaseAfter, Time: at, Language: lang, Editor: ed, Fragment: &fragment, Text: fragment.Text, Caret: caret}, opts)
}

// TextRemoved is text about to be removed from the document.
func TextRemoved(at time.Time, lang string, ed EditorRef, fragment TextFragment, caret int, opts ...Option) Action {
	return build(Action{Kind: KindTextRemoved, Phase: PhaseBefore, Time: at, Language: lang, Editor: ed, Fragment: &fragment, Text: fragment.Text, Caret: caret}, opts)
}

// Find is an invocation of find-in-file.
func Find(at time.Time, lang string, ed EditorRef, opts ...Option) Action {
	return build(Action{Kind: KindFind, Phase: PhaseAfter, Time: at, Language: lang, Editor: ed}, opts)
}

// CodeCompletion is an explicit completion request.
func CodeCompletion(at time.Time, lang string, ed EditorRef, caret int, opts ...Option) Action {
	return build(Action{Kind: KindCodeCompletion, Phase: PhaseAfter, Time: at, Language: lang, Editor: ed, Caret: caret}, opts)
}

// CompletionChooseItem is the selection of a completion item.
func CompletionChooseItem(at time.Time, lang string, ed EditorRef, caret int, opts ...Option) Action {
	return build(Action{Kind: KindCompletionChooseItem, Phase: PhaseAfter, Time: at, Language: lang, Editor: ed, Caret: caret}, opts)
}

// Escape is an escape key press in the editor.
func Escape(at time.Time, lang string, ed EditorRef, caret int, opts ...Option) Action {
	return build(Action{Kind: KindEscape, Phase: PhaseAfter, Time: at, Language: lang, Editor: ed, Caret: caret}, opts)
}

// FocusGained is an editor gaining keyboard focus.
func FocusGained(at time.Time, lang string, ed EditorRef, opts ...Option) Action {
	return build(Action{Kind: KindFocusGained, Phase: PhaseAfter, Time: at, Language: lang, Editor: ed}, opts)
}

// BreakpointAdded is a line breakpoint being set.
func BreakpointAdded(at time.Time, lang string, pos Position, opts ...Option) Action {
	return build(Action{Kind: KindBreakpointAdded, Phase: PhaseAfter, Time: at, Language: lang, Position: &pos}, opts)
}

// BreakpointRemoved is a line breakpoint being cleared.
func BreakpointRemoved(at time.Time, lang string, pos Position, opts ...Option) Action {
	return build(Action{Kind: KindBreakpointRemoved, Phase: PhaseAfter, Time: at, Language: lang, Position: &pos}, opts)
}

// DebugPaused is the debugger suspending at pos.
func DebugPaused(at time.Time, lang string, pos Position, opts ...Option) Action {
	return build(Action{Kind: KindDebugPaused, Phase: PhaseAfter, Time: at, Language: lang, Position: &pos}, opts)
}
