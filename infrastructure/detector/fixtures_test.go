package detector

import (
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/action"
	"github.com/felixgeelhaar/suggest-go/domain/detector"
	"github.com/felixgeelhaar/suggest-go/domain/history"
	"github.com/felixgeelhaar/suggest-go/domain/language"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
	"github.com/felixgeelhaar/suggest-go/infrastructure/language/tree"
)

var t0 = time.UnixMilli(1_700_000_000_000)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

type fakeEditor struct {
	file  language.File
	caret int
	query *action.FindQuery
}

func (e *fakeEditor) File() language.File { return e.file }
func (e *fakeEditor) Caret() int          { return e.caret }
func (e *fakeEditor) Selection() (action.TextFragment, bool) {
	return action.TextFragment{}, false
}
func (e *fakeEditor) Find() (action.FindQuery, bool) {
	if e.query == nil {
		return action.FindQuery{}, false
	}
	return *e.query, true
}

// javaIf is `if (a) {\n  b();\n}`.
func javaIf() *tree.File {
	return tree.NewFile("Main.java", tree.New("FILE", 0, 17,
		tree.New("IF_STATEMENT", 0, 17,
			tree.New("IF_KEYWORD", 0, 2),
			tree.New("WHITE_SPACE", 2, 3),
			tree.New("LPARENTH", 3, 4),
			tree.New("REFERENCE_EXPRESSION", 4, 5),
			tree.New("RPARENTH", 5, 6),
			tree.New("WHITE_SPACE", 6, 7),
			tree.New("BLOCK_STATEMENT", 7, 17,
				tree.New("CODE_BLOCK", 7, 17,
					tree.New("LBRACE", 7, 8),
					tree.New("WHITE_SPACE", 8, 11),
					tree.New("EXPRESSION_STATEMENT", 11, 15),
					tree.New("WHITE_SPACE", 15, 16),
					tree.New("RBRACE", 16, 17),
				),
			),
		),
	))
}

// javaEmptyIf is `if (a) {\n}`.
func javaEmptyIf() *tree.File {
	return tree.NewFile("Main.java", tree.New("FILE", 0, 10,
		tree.New("IF_STATEMENT", 0, 10,
			tree.New("IF_KEYWORD", 0, 2),
			tree.New("WHITE_SPACE", 2, 3),
			tree.New("LPARENTH", 3, 4),
			tree.New("REFERENCE_EXPRESSION", 4, 5),
			tree.New("RPARENTH", 5, 6),
			tree.New("WHITE_SPACE", 6, 7),
			tree.New("BLOCK_STATEMENT", 7, 10,
				tree.New("CODE_BLOCK", 7, 10,
					tree.New("LBRACE", 7, 8),
					tree.New("WHITE_SPACE", 8, 9),
					tree.New("RBRACE", 9, 10),
				),
			),
		),
	))
}

// javaForeach is `for (x : xs) {\n  b();\n}`.
func javaForeach() *tree.File {
	return tree.NewFile("Main.java", tree.New("FILE", 0, 23,
		tree.New("FOREACH_STATEMENT", 0, 23,
			tree.New("FOR_KEYWORD", 0, 3),
			tree.New("WHITE_SPACE", 3, 4),
			tree.New("LPARENTH", 4, 5),
			tree.New("PARAMETER", 5, 6),
			tree.New("WHITE_SPACE", 6, 7),
			tree.New("COLON", 7, 8),
			tree.New("WHITE_SPACE", 8, 9),
			tree.New("REFERENCE_EXPRESSION", 9, 11),
			tree.New("RPARENTH", 11, 12),
			tree.New("WHITE_SPACE", 12, 13),
			tree.New("BLOCK_STATEMENT", 13, 23,
				tree.New("CODE_BLOCK", 13, 23,
					tree.New("LBRACE", 13, 14),
					tree.New("WHITE_SPACE", 14, 17),
					tree.New("EXPRESSION_STATEMENT", 17, 21),
					tree.New("WHITE_SPACE", 21, 22),
					tree.New("RBRACE", 22, 23),
				),
			),
		),
	))
}

// kotlinWhile is `while (a) {\n  b()\n}`.
func kotlinWhile() *tree.File {
	return tree.NewFile("Main.kt", tree.New("kotlin.FILE", 0, 19,
		tree.New("WHILE", 0, 19,
			tree.New("while", 0, 5),
			tree.New("WHITE_SPACE", 5, 6),
			tree.New("LPAR", 6, 7),
			tree.New("CONDITION", 7, 8),
			tree.New("RPAR", 8, 9),
			tree.New("WHITE_SPACE", 9, 10),
			tree.New("BODY", 10, 19,
				tree.New("BLOCK", 10, 19,
					tree.New("LBRACE", 10, 11),
					tree.New("WHITE_SPACE", 11, 14),
					tree.New("CALL_EXPRESSION", 14, 17),
					tree.New("WHITE_SPACE", 17, 18),
					tree.New("RBRACE", 18, 19),
				),
			),
		),
	))
}

// javaClass is `class A { void fooBar() {} }` with the method declared as method.
func javaClass(method string) *tree.File {
	return tree.NewFile("A.java", tree.New("FILE", 0, 28,
		tree.New("CLASS", 0, 28,
			tree.New("CLASS_KEYWORD", 0, 5),
			tree.New("WHITE_SPACE", 5, 6),
			tree.New("IDENTIFIER", 6, 7),
			tree.New("WHITE_SPACE", 7, 8),
			tree.New("LBRACE", 8, 9),
			tree.New("WHITE_SPACE", 9, 10),
			tree.New("METHOD", 10, 26,
				tree.New("TYPE", 10, 14),
				tree.New("WHITE_SPACE", 14, 15),
				tree.New("IDENTIFIER", 15, 21),
				tree.New("PARAMETER_LIST", 21, 23),
				tree.New("WHITE_SPACE", 23, 24),
				tree.New("CODE_BLOCK", 24, 26,
					tree.New("LBRACE", 24, 25),
					tree.New("RBRACE", 25, 26),
				),
			).Named(method),
			tree.New("WHITE_SPACE", 26, 27),
			tree.New("RBRACE", 27, 28),
		).Named("A"),
	))
}

func removed(ms int, ed action.EditorRef, start int, text string, caret int) action.Action {
	frag := action.TextFragment{Start: start, End: start + len(text), Text: text}
	return action.TextRemoved(at(ms), "JAVA", ed, frag, caret)
}

// feed appends every action to a fresh history and runs d after each one.
func feed(d detector.Detector, lang language.Capability, actions ...action.Action) []suggestion.Suggestion {
	h := history.New(0)
	out := make([]suggestion.Suggestion, 0, len(actions))
	for _, a := range actions {
		h.Append(a)
		out = append(out, d.Detect(h, lang))
	}
	return out
}

func positives(results []suggestion.Suggestion) int {
	n := 0
	for _, s := range results {
		if !s.IsNone() {
			n++
		}
	}
	return n
}
