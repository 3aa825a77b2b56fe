// Package language provides the capability implementations and the registry
// the engine uses to resolve a language id to its capability.
package language

import (
	"github.com/felixgeelhaar/suggest-go/domain/language"
)

// KindSpec lists the node kinds a parser uses for the constructs detectors
// ask about.
type KindSpec struct {
	// Identifier kinds are name tokens.
	Identifier []string `json:"identifier" yaml:"identifier"`

	// CodeBlock kinds are brace-delimited statement blocks.
	CodeBlock []string `json:"code_block" yaml:"code_block"`

	// NonStatement kinds are block children that are not statements
	// (braces, whitespace, comments).
	NonStatement []string `json:"non_statement" yaml:"non_statement"`

	// If, For and While kinds identify the surrounding statements.
	If    []string `json:"if" yaml:"if"`
	For   []string `json:"for" yaml:"for"`
	While []string `json:"while" yaml:"while"`

	// Statement kinds may own a code block.
	Statement []string `json:"statement" yaml:"statement"`

	// Transparent kinds sit between a statement and its block
	// (e.g. Java's BLOCK_STATEMENT, Kotlin's THEN).
	Transparent []string `json:"transparent" yaml:"transparent"`

	// Structure kinds appear in the file structure view.
	Structure []string `json:"structure" yaml:"structure"`
}

type kindSet map[string]struct{}

func newKindSet(kinds ...[]string) kindSet {
	s := make(kindSet)
	for _, list := range kinds {
		for _, k := range list {
			s[k] = struct{}{}
		}
	}
	return s
}

func (s kindSet) has(n language.Node) bool {
	if n == nil {
		return false
	}
	_, ok := s[n.Kind()]
	return ok
}

// KindTable is a Capability that answers every question by looking up node
// kinds. It covers parsers whose trees distinguish constructs by kind alone.
type KindTable struct {
	name         string
	identifier   kindSet
	codeBlock    kindSet
	nonStatement kindSet
	ifKinds      kindSet
	forKinds     kindSet
	whileKinds   kindSet
	statement    kindSet
	transparent  kindSet
	structure    kindSet
}

// NewKindTable builds a capability from spec. If, For and While kinds are
// always treated as statements.
func NewKindTable(name string, spec KindSpec) *KindTable {
	return &KindTable{
		name:         name,
		identifier:   newKindSet(spec.Identifier),
		codeBlock:    newKindSet(spec.CodeBlock),
		nonStatement: newKindSet(spec.NonStatement),
		ifKinds:      newKindSet(spec.If),
		forKinds:     newKindSet(spec.For),
		whileKinds:   newKindSet(spec.While),
		statement:    newKindSet(spec.Statement, spec.If, spec.For, spec.While),
		transparent:  newKindSet(spec.Transparent),
		structure:    newKindSet(spec.Structure),
	}
}

// Name returns the language the table was built for.
func (t *KindTable) Name() string { return t.name }

// IsIdentifier implements language.Capability.
func (t *KindTable) IsIdentifier(node language.Node) bool { return t.identifier.has(node) }

// IsCodeBlock implements language.Capability.
func (t *KindTable) IsCodeBlock(node language.Node) bool { return t.codeBlock.has(node) }

// IsIfStatement implements language.Capability.
func (t *KindTable) IsIfStatement(node language.Node) bool { return t.ifKinds.has(node) }

// IsForStatement implements language.Capability.
func (t *KindTable) IsForStatement(node language.Node) bool { return t.forKinds.has(node) }

// IsWhileStatement implements language.Capability.
func (t *KindTable) IsWhileStatement(node language.Node) bool { return t.whileKinds.has(node) }

// IsFileStructureElement implements language.Capability.
func (t *KindTable) IsFileStructureElement(node language.Node) bool { return t.structure.has(node) }

// Statements implements language.Capability.
func (t *KindTable) Statements(block language.Node) []language.Node {
	if !t.IsCodeBlock(block) {
		return nil
	}
	var out []language.Node
	for _, c := range block.Children() {
		if !t.nonStatement.has(c) {
			out = append(out, c)
		}
	}
	return out
}

// EnclosingStatement implements language.Capability.
func (t *KindTable) EnclosingStatement(block language.Node) language.Node {
	if !t.IsCodeBlock(block) {
		return nil
	}
	p := block.Parent()
	for p != nil && t.transparent.has(p) {
		p = p.Parent()
	}
	if !t.statement.has(p) {
		return nil
	}
	return p
}

// BlockOf implements language.Capability. It returns the first code block
// reachable from statement without entering another statement.
func (t *KindTable) BlockOf(statement language.Node) language.Node {
	if !t.statement.has(statement) {
		return nil
	}
	return t.findBlock(statement.Children())
}

func (t *KindTable) findBlock(nodes []language.Node) language.Node {
	for _, n := range nodes {
		switch {
		case t.codeBlock.has(n):
			return n
		case t.transparent.has(n):
			if b := t.findBlock(n.Children()); b != nil {
				return b
			}
		}
	}
	return nil
}

// DefinitionAt implements language.Capability. The element just before
// offset must be an identifier whose parent is a named declaration.
func (t *KindTable) DefinitionAt(file language.File, offset int) language.Named {
	if file == nil || offset-1 < 0 {
		return nil
	}
	leaf := file.ElementAt(offset - 1)
	if !t.IsIdentifier(leaf) {
		return nil
	}
	named, ok := leaf.Parent().(language.Named)
	if !ok || named == nil || named.Name() == "" {
		return nil
	}
	return named
}

var _ language.Capability = (*KindTable)(nil)
