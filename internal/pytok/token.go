package pytok

// Kind classifies a lexical unit.
type Kind uint8

const (
	Identifier Kind = iota
	Keyword
	Operator
	Number
	String
	Comment
	Whitespace // inline runs of spaces/tabs, including backslash continuations
	Newline
	Indent // leading whitespace of a logical line at bracket depth 0
	Unknown
)

var kindNames = [...]string{
	Identifier: "identifier",
	Keyword:    "keyword",
	Operator:   "operator",
	Number:     "number",
	String:     "string",
	Comment:    "comment",
	Whitespace: "whitespace",
	Newline:    "newline",
	Indent:     "indent",
	Unknown:    "unknown",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Semantic reports whether a unit of this kind carries program meaning.
// Semantic units must survive reduction with their text unchanged; the
// rest is trivia that may be recorded into a reduction map and elided.
func (k Kind) Semantic() bool {
	switch k {
	case Identifier, Keyword, Operator, Number, String, Unknown:
		return true
	}
	return false
}

// Token is a positioned lexical unit. Token texts of a full scan
// concatenate back to the exact input: every byte is covered, no overlaps.
// Tokens are immutable once produced.
type Token struct {
	Kind  Kind
	Text  string
	Start int // byte offset, inclusive
	End   int // byte offset, exclusive
	Line  int // 1-based line of the first byte
	Col   int // 0-based column of the first byte
}

var keywords = map[string]bool{
	"False": true, "None": true, "True": true,
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true, "or": true,
	"pass": true, "raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
}

// IsKeyword reports whether name is a Python hard keyword. Soft keywords
// (match, case, type) lex as identifiers, same as CPython's tokenizer.
func IsKeyword(name string) bool {
	return keywords[name]
}
