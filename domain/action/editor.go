package action

import (
	"weak"

	"github.com/felixgeelhaar/suggest-go/domain/language"
)

// FindQuery is the state of the host's find-in-file model.
type FindQuery struct {
	Text          string `json:"text" yaml:"text"`
	CaseSensitive bool   `json:"case_sensitive" yaml:"case_sensitive"`
}

// Editor is the host editor as seen by detectors. Implementations are owned
// by the host; the engine only ever holds them through an EditorRef.
type Editor interface {
	// File returns the parsed file shown in the editor, or nil.
	File() language.File

	// Caret returns the primary caret offset.
	Caret() int

	// Selection returns the selected fragment, if any.
	Selection() (TextFragment, bool)

	// Find returns the active find-in-file query, if any.
	Find() (FindQuery, bool)
}

// EditorRef is a non-owning handle to an Editor. Holding an EditorRef never
// keeps the editor alive; Resolve reports false once the host dropped it.
type EditorRef struct {
	key     any
	resolve func() (Editor, bool)
}

// WeakRef returns a handle that does not keep e reachable.
func WeakRef[T any, PT interface {
	*T
	Editor
}](e PT) EditorRef {
	if e == nil {
		return EditorRef{}
	}
	wp := weak.Make((*T)(e))
	return EditorRef{
		key: wp,
		resolve: func() (Editor, bool) {
			p := wp.Value()
			if p == nil {
				return nil, false
			}
			return PT(p), true
		},
	}
}

// StrongRef returns a handle for hosts that manage editor lifetime
// themselves. e must be comparable (typically a pointer).
func StrongRef(e Editor) EditorRef {
	if e == nil {
		return EditorRef{}
	}
	return EditorRef{
		key: e,
		resolve: func() (Editor, bool) {
			return e, true
		},
	}
}

// Resolve returns the editor if it is still alive.
func (r EditorRef) Resolve() (Editor, bool) {
	if r.resolve == nil {
		return nil, false
	}
	return r.resolve()
}

// IsZero reports whether the handle was never bound to an editor.
func (r EditorRef) IsZero() bool {
	return r.key == nil
}

// Same reports whether both handles were created for the same editor.
func (r EditorRef) Same(other EditorRef) bool {
	return r.key != nil && r.key == other.key
}
