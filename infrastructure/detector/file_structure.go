package detector

import (
	"strings"

	"github.com/felixgeelhaar/suggest-go/domain/action"
	"github.com/felixgeelhaar/suggest-go/domain/detector"
	"github.com/felixgeelhaar/suggest-go/domain/history"
	"github.com/felixgeelhaar/suggest-go/domain/language"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
)

const (
	fileStructureMessage     = "Why not use the File Structure popup? It jumps to any declaration of the file by name."
	fileStructureTipResource = "FileStructurePopup.html"
)

// FileStructure detects find-in-file used to reach a declaration that the
// file structure popup would have listed. It keeps no state.
type FileStructure struct{}

// NewFileStructure creates a file structure detector.
func NewFileStructure() *FileStructure {
	return &FileStructure{}
}

// Descriptor implements detector.Detector.
func (f *FileStructure) Descriptor() detector.Descriptor {
	return detector.Descriptor{
		ID:          IDFileStructure,
		DisplayName: "File Structure",
		Languages:   []string{"JAVA", "kotlin", "Python", "ECMAScript 6"},
	}
}

// Reset implements detector.Detector.
func (f *FileStructure) Reset() {}

// Detect implements detector.Detector.
func (f *FileStructure) Detect(actions *history.History, lang language.Capability) suggestion.Suggestion {
	if actions.Len() < 2 || lang == nil {
		return suggestion.None
	}
	last, _ := actions.Get(0)
	prev, _ := actions.Get(1)
	if last.Kind != action.KindFocusGained || prev.Kind != action.KindFind {
		return suggestion.None
	}
	if !last.Editor.Same(prev.Editor) {
		return suggestion.None
	}

	ed, ok := last.Editor.Resolve()
	if !ok || ed == nil {
		return suggestion.None
	}
	query, ok := ed.Find()
	if !ok || query.Text == "" {
		return suggestion.None
	}
	file := ed.File()
	if file == nil {
		return suggestion.None
	}

	definition := lang.DefinitionAt(file, ed.Caret())
	if definition == nil || !lang.IsFileStructureElement(definition) {
		return suggestion.None
	}
	if !nameContains(definition.Name(), query) {
		return suggestion.None
	}
	return suggestion.NewTip(fileStructureMessage, IDFileStructure, fileStructureTipResource)
}

func nameContains(name string, q action.FindQuery) bool {
	if q.CaseSensitive {
		return strings.Contains(name, q.Text)
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(q.Text))
}

var _ detector.Detector = (*FileStructure)(nil)
