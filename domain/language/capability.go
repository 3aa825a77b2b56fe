// Package language defines the syntactic query surface detectors use to
// reason about source code without depending on a particular parser.
package language

// AnyLanguage is the language id a detector declares when it runs for every
// supported language.
const AnyLanguage = "ANY"

// Node is a parsed syntax element supplied by the host.
type Node interface {
	// Kind is the parser-specific element type, e.g. "IF_STATEMENT".
	Kind() string

	// Start is the offset of the first character of the element.
	Start() int

	// End is the offset just past the last character of the element.
	End() int

	// Parent returns the enclosing element, or nil at the root.
	Parent() Node

	// Children returns the direct sub-elements in source order.
	Children() []Node
}

// Named is a node that declares a name (class, method, function, field).
type Named interface {
	Node

	// Name returns the declared name.
	Name() string
}

// File is a parsed source file.
type File interface {
	// Path identifies the file.
	Path() string

	// ElementAt returns the innermost leaf element covering offset, or nil.
	ElementAt(offset int) Node
}

// Capability answers structural questions about one language's syntax tree.
// Implementations are pure: they never mutate the tree and never fail. A nil
// or false result means "not applicable here".
type Capability interface {
	// IsIdentifier reports whether node is an identifier token.
	IsIdentifier(node Node) bool

	// IsCodeBlock reports whether node is a brace-delimited statement block.
	IsCodeBlock(node Node) bool

	// Statements returns the statements of a code block in source order.
	Statements(block Node) []Node

	// IsIfStatement reports whether node is an if statement.
	IsIfStatement(node Node) bool

	// IsForStatement reports whether node is a classic for statement.
	// Iteration forms such as foreach are not for statements.
	IsForStatement(node Node) bool

	// IsWhileStatement reports whether node is a while statement.
	IsWhileStatement(node Node) bool

	// EnclosingStatement returns the statement that owns block, or nil.
	EnclosingStatement(block Node) Node

	// BlockOf returns the code block owned by statement, or nil.
	BlockOf(statement Node) Node

	// DefinitionAt returns the named declaration whose identifier ends at
	// offset, or nil.
	DefinitionAt(file File, offset int) Named

	// IsFileStructureElement reports whether node appears in the file
	// structure view (types, functions, methods, fields).
	IsFileStructureElement(node Node) bool
}

// Resolver maps a language id to its capability.
type Resolver interface {
	// Resolve returns the capability for id, falling back to the base
	// language of a dialect.
	Resolve(id string) (Capability, bool)

	// Canonical returns the id that Resolve actually matched.
	Canonical(id string) (string, bool)
}

// IsSurroundingStatement reports whether node is an if, for or while
// statement according to c.
func IsSurroundingStatement(c Capability, node Node) bool {
	if node == nil {
		return false
	}
	return c.IsIfStatement(node) || c.IsForStatement(node) || c.IsWhileStatement(node)
}
