// Package scenario loads recorded editor sessions and turns them into
// actions for the engine. A scenario pairs pre-parsed files with the
// ordered steps a user took in them.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/suggest-go/domain/action"
	"github.com/felixgeelhaar/suggest-go/domain/language"
	"github.com/felixgeelhaar/suggest-go/infrastructure/language/tree"
)

var (
	// ErrInvalidScenario indicates a scenario that cannot be replayed.
	ErrInvalidScenario = errors.New("invalid scenario")

	// ErrUnknownKind indicates a step with an unsupported action kind.
	ErrUnknownKind = errors.New("unknown action kind")

	// ErrUnknownFile indicates a step referring to an undeclared file.
	ErrUnknownFile = errors.New("unknown file")
)

// Scenario is a recorded editor session.
type Scenario struct {
	// Session names the replayed session.
	Session string `yaml:"session"`
	// Language is the default language of every step.
	Language string `yaml:"language"`
	// Files are the parsed files the steps refer to.
	Files []*tree.File `yaml:"files"`
	// Steps are the user actions in order.
	Steps []Step `yaml:"steps"`
}

// Step is one recorded action. Editor fields (caret, find, selection)
// update the editor of File before the action is built.
type Step struct {
	Kind     action.Kind  `yaml:"kind"`
	Phase    action.Phase `yaml:"phase,omitempty"`
	AtMillis int64        `yaml:"at"`
	Language string       `yaml:"language,omitempty"`
	File     string       `yaml:"file,omitempty"`
	Command  string       `yaml:"command,omitempty"`

	Text      string               `yaml:"text,omitempty"`
	Fragment  *action.TextFragment `yaml:"fragment,omitempty"`
	Caret     *int                 `yaml:"caret,omitempty"`
	Position  *action.Position     `yaml:"position,omitempty"`
	Find      *action.FindQuery    `yaml:"find,omitempty"`
	Selection *action.TextFragment `yaml:"selection,omitempty"`
}

// LoadFile reads a YAML scenario from path.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a YAML scenario and links its syntax trees.
func Load(r io.Reader) (*Scenario, error) {
	var s Scenario
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	for _, f := range s.Files {
		if f == nil || f.FilePath == "" {
			return nil, fmt.Errorf("%w: file without path", ErrInvalidScenario)
		}
		f.Link()
	}
	if s.Session == "" {
		s.Session = "replay"
	}
	return &s, nil
}

// Editor is the in-memory editor of one scenario file.
type Editor struct {
	file      *tree.File
	caret     int
	query     *action.FindQuery
	selection *action.TextFragment
}

// File implements action.Editor.
func (e *Editor) File() language.File {
	if e.file == nil {
		return nil
	}
	return e.file
}

// Caret implements action.Editor.
func (e *Editor) Caret() int { return e.caret }

// Selection implements action.Editor.
func (e *Editor) Selection() (action.TextFragment, bool) {
	if e.selection == nil {
		return action.TextFragment{}, false
	}
	return *e.selection, true
}

// Find implements action.Editor.
func (e *Editor) Find() (action.FindQuery, bool) {
	if e.query == nil {
		return action.FindQuery{}, false
	}
	return *e.query, true
}

func (e *Editor) apply(st Step) {
	if st.Caret != nil {
		e.caret = *st.Caret
	}
	if st.Find != nil {
		q := *st.Find
		e.query = &q
	}
	if st.Selection != nil {
		sel := *st.Selection
		e.selection = &sel
	}
}

var _ action.Editor = (*Editor)(nil)

// Player yields the actions of a scenario one at a time so that editor
// state changes line up with the engine consuming each action.
type Player struct {
	scenario *Scenario
	start    time.Time
	editors  map[string]*Editor
	next     int
}

// NewPlayer creates a player whose step times are offsets from start.
func NewPlayer(s *Scenario, start time.Time) *Player {
	p := &Player{
		scenario: s,
		start:    start,
		editors:  make(map[string]*Editor, len(s.Files)),
	}
	for _, f := range s.Files {
		p.editors[f.FilePath] = &Editor{file: f}
	}
	return p
}

// Editor returns the editor of path.
func (p *Player) Editor(path string) (*Editor, bool) {
	e, ok := p.editors[path]
	return e, ok
}

// Next builds the next action. It returns io.EOF after the last step.
func (p *Player) Next() (action.Action, error) {
	if p.next >= len(p.scenario.Steps) {
		return action.Action{}, io.EOF
	}
	i := p.next
	p.next++

	a, err := p.build(p.scenario.Steps[i])
	if err != nil {
		return action.Action{}, fmt.Errorf("step %d: %w", i+1, err)
	}
	return a, nil
}

func (p *Player) build(st Step) (action.Action, error) {
	lang := st.Language
	if lang == "" {
		lang = p.scenario.Language
	}
	at := p.start.Add(time.Duration(st.AtMillis) * time.Millisecond)

	var ref action.EditorRef
	caret := 0
	if st.File != "" {
		ed, ok := p.editors[st.File]
		if !ok {
			return action.Action{}, fmt.Errorf("%w: %s", ErrUnknownFile, st.File)
		}
		ed.apply(st)
		ref = action.StrongRef(ed)
		caret = ed.caret
	}

	var opts []action.Option
	if st.Command != "" {
		opts = append(opts, action.WithCommand(st.Command))
	}
	if st.Phase != "" {
		opts = append(opts, action.WithPhase(st.Phase))
	}

	fragment := func() (action.TextFragment, error) {
		if st.Fragment == nil {
			return action.TextFragment{}, fmt.Errorf("%w: %s needs a fragment", ErrInvalidScenario, st.Kind)
		}
		return *st.Fragment, nil
	}
	position := func() (action.Position, error) {
		if st.Position == nil {
			return action.Position{}, fmt.Errorf("%w: %s needs a position", ErrInvalidScenario, st.Kind)
		}
		return *st.Position, nil
	}

	switch st.Kind {
	case action.KindCopy:
		return action.Copy(at, lang, ref, st.Text, opts...), nil
	case action.KindCut:
		return action.Cut(at, lang, ref, st.Fragment, opts...), nil
	case action.KindPaste:
		return action.Paste(at, lang, ref, st.Text, caret, opts...), nil
	case action.KindBackspace:
		return action.Backspace(at, lang, ref, st.Fragment, caret, opts...), nil
	case action.KindTextInserted:
		f, err := fragment()
		if err != nil {
			return action.Action{}, err
		}
		return action.TextInserted(at, lang, ref, f, caret, opts...), nil
	case action.KindTextRemoved:
		f, err := fragment()
		if err != nil {
			return action.Action{}, err
		}
		return action.TextRemoved(at, lang, ref, f, caret, opts...), nil
	case action.KindFind:
		return action.Find(at, lang, ref, opts...), nil
	case action.KindCodeCompletion:
		return action.CodeCompletion(at, lang, ref, caret, opts...), nil
	case action.KindCompletionChooseItem:
		return action.CompletionChooseItem(at, lang, ref, caret, opts...), nil
	case action.KindEscape:
		return action.Escape(at, lang, ref, caret, opts...), nil
	case action.KindFocusGained:
		return action.FocusGained(at, lang, ref, opts...), nil
	case action.KindBreakpointAdded:
		pos, err := position()
		if err != nil {
			return action.Action{}, err
		}
		return action.BreakpointAdded(at, lang, pos, opts...), nil
	case action.KindBreakpointRemoved:
		pos, err := position()
		if err != nil {
			return action.Action{}, err
		}
		return action.BreakpointRemoved(at, lang, pos, opts...), nil
	case action.KindDebugPaused:
		pos, err := position()
		if err != nil {
			return action.Action{}, err
		}
		return action.DebugPaused(at, lang, pos, opts...), nil
	default:
		return action.Action{}, fmt.Errorf("%w: %q", ErrUnknownKind, st.Kind)
	}
}
