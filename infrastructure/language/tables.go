package language

// Language ids as reported by the host.
const (
	IDJava       = "JAVA"
	IDKotlin     = "kotlin"
	IDJavaScript = "ECMAScript 6"
	IDPython     = "Python"
)

var commonNonStatement = []string{"LBRACE", "RBRACE", "WHITE_SPACE", "SEMICOLON", "END_OF_LINE_COMMENT", "C_STYLE_COMMENT", "DOC_COMMENT"}

// Java returns the capability for Java PSI-style trees.
func Java() *KindTable {
	return NewKindTable(IDJava, KindSpec{
		Identifier:   []string{"IDENTIFIER"},
		CodeBlock:    []string{"CODE_BLOCK"},
		NonStatement: commonNonStatement,
		If:           []string{"IF_STATEMENT"},
		For:          []string{"FOR_STATEMENT"},
		While:        []string{"WHILE_STATEMENT"},
		Statement: []string{
			"FOREACH_STATEMENT", "DO_WHILE_STATEMENT", "SWITCH_STATEMENT",
			"TRY_STATEMENT", "SYNCHRONIZED_STATEMENT", "LABELED_STATEMENT",
		},
		Transparent: []string{"BLOCK_STATEMENT"},
		Structure:   []string{"CLASS", "INTERFACE", "ENUM", "RECORD", "METHOD", "FIELD", "ENUM_CONSTANT"},
	})
}

// Kotlin returns the capability for Kotlin PSI-style trees. Every Kotlin
// for loop iterates, so FOR counts as a for statement.
func Kotlin() *KindTable {
	return NewKindTable(IDKotlin, KindSpec{
		Identifier:   []string{"IDENTIFIER"},
		CodeBlock:    []string{"BLOCK"},
		NonStatement: commonNonStatement,
		If:           []string{"IF"},
		For:          []string{"FOR"},
		While:        []string{"WHILE"},
		Statement:    []string{"DO_WHILE", "TRY", "WHEN"},
		Transparent:  []string{"THEN", "ELSE", "BODY"},
		Structure:    []string{"CLASS", "OBJECT_DECLARATION", "FUN", "PROPERTY"},
	})
}

// JavaScript returns the capability for ECMAScript trees.
func JavaScript() *KindTable {
	return NewKindTable(IDJavaScript, KindSpec{
		Identifier:   []string{"IDENTIFIER"},
		CodeBlock:    []string{"BLOCK_STATEMENT"},
		NonStatement: commonNonStatement,
		If:           []string{"IF_STATEMENT"},
		For:          []string{"FOR_STATEMENT"},
		While:        []string{"WHILE_STATEMENT"},
		Statement:    []string{"FOR_IN_STATEMENT", "DO_WHILE_STATEMENT", "SWITCH_STATEMENT", "TRY_STATEMENT"},
		Structure:    []string{"CLASS", "FUNCTION_DECLARATION", "FUNCTION", "FIELD", "VARIABLE"},
	})
}

// Python returns the capability for Python trees. Python has no braces, so
// its statement lists are blocks only for structural queries.
func Python() *KindTable {
	return NewKindTable(IDPython, KindSpec{
		Identifier:   []string{"IDENTIFIER"},
		CodeBlock:    []string{"STATEMENT_LIST"},
		NonStatement: []string{"WHITE_SPACE", "END_OF_LINE_COMMENT"},
		If:           []string{"IF_STATEMENT"},
		For:          []string{"FOR_STATEMENT"},
		While:        []string{"WHILE_STATEMENT"},
		Statement:    []string{"TRY_STATEMENT", "WITH_STATEMENT"},
		Transparent:  []string{"IF_PART", "ELSE_PART", "FOR_PART", "WHILE_PART"},
		Structure:    []string{"CLASS_DECLARATION", "FUNCTION_DECLARATION", "TARGET_EXPRESSION"},
	})
}
