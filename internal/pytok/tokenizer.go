package pytok

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SyntaxError reports source that cannot be lexically validated as Python:
// unterminated strings, bracket imbalance, inconsistent dedents.
type SyntaxError struct {
	Msg  string
	Line int
	Col  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Tokenize scans Python source into an ordered sequence of positioned
// lexical units. The concatenation of all token texts equals src exactly.
// Bytes that are not part of any recognized construct come back as single
// Unknown tokens rather than failing the scan; only structural problems
// (see SyntaxError) abort.
func Tokenize(src string) ([]Token, error) {
	s := &scanner{src: src, line: 1, indents: []int{0}, atLineStart: true}
	for s.pos < len(s.src) {
		if err := s.next(); err != nil {
			return nil, err
		}
	}
	if len(s.brackets) > 0 {
		return nil, &SyntaxError{
			Msg:  fmt.Sprintf("unexpected EOF, unclosed %q", string(s.brackets[len(s.brackets)-1])),
			Line: s.line,
			Col:  s.col,
		}
	}
	return s.toks, nil
}

type scanner struct {
	src         string
	pos         int
	line        int // 1-based
	col         int // 0-based
	brackets    []byte
	indents     []int
	atLineStart bool
	toks        []Token
}

func (s *scanner) next() error {
	if s.atLineStart && len(s.brackets) == 0 {
		return s.scanLineStart()
	}

	c := s.src[s.pos]
	switch {
	case c == ' ' || c == '\t' || c == '\f':
		j := s.pos
		for j < len(s.src) && (s.src[j] == ' ' || s.src[j] == '\t' || s.src[j] == '\f') {
			j++
		}
		s.emit(Whitespace, j-s.pos)

	case c == '\\':
		// Backslash-newline continues the logical line. It is emitted as
		// a Whitespace unit so logical-line detection can key on Newline
		// tokens alone.
		if n := newlineLen(s.src[s.pos+1:]); n > 0 {
			s.emit(Whitespace, 1+n)
		} else {
			s.emit(Unknown, 1)
		}

	case c == '\n' || c == '\r':
		n := newlineLen(s.src[s.pos:])
		s.emit(Newline, n)
		if len(s.brackets) == 0 {
			s.atLineStart = true
		}

	case c == '#':
		j := s.pos
		for j < len(s.src) && s.src[j] != '\n' && s.src[j] != '\r' {
			j++
		}
		s.emit(Comment, j-s.pos)

	case c == '\'' || c == '"':
		return s.scanString(0)

	case c >= '0' && c <= '9':
		s.scanNumber()

	case c == '.' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1]):
		s.scanNumber()

	case c == '_' || isASCIILetter(c) || c >= utf8.RuneSelf:
		return s.scanName()

	default:
		return s.scanOperator()
	}
	return nil
}

// scanLineStart consumes leading whitespace of a physical line at bracket
// depth 0 and validates the indentation stack. Blank and comment-only
// lines never touch the stack.
func (s *scanner) scanLineStart() error {
	start := s.pos
	j := start
	for j < len(s.src) && (s.src[j] == ' ' || s.src[j] == '\t' || s.src[j] == '\f') {
		j++
	}

	blank := j >= len(s.src) || s.src[j] == '\n' || s.src[j] == '\r' || s.src[j] == '#'
	if !blank {
		w := IndentWidth(s.src[start:j])
		top := s.indents[len(s.indents)-1]
		switch {
		case w > top:
			s.indents = append(s.indents, w)
		case w < top:
			for len(s.indents) > 1 && s.indents[len(s.indents)-1] > w {
				s.indents = s.indents[:len(s.indents)-1]
			}
			if s.indents[len(s.indents)-1] != w {
				return &SyntaxError{Msg: "unindent does not match any outer indentation level", Line: s.line, Col: 0}
			}
		}
	}

	if j > start {
		s.emit(Indent, j-start)
	}
	s.atLineStart = false
	return nil
}

func (s *scanner) scanName() error {
	j := s.pos
	for j < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[j:])
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			j += size
		} else {
			break
		}
	}
	// A rune that opens no identifier (BOM, smart quote, emoji) passes
	// through as a single Unknown unit.
	if j == s.pos {
		_, size := utf8.DecodeRuneInString(s.src[s.pos:])
		s.emit(Unknown, size)
		return nil
	}
	name := s.src[s.pos:j]

	// String prefixes (r, b, f, u and two-letter combos) glue onto the
	// following quote as a single literal.
	if isStringPrefix(name) && j < len(s.src) && (s.src[j] == '\'' || s.src[j] == '"') {
		return s.scanString(j - s.pos)
	}

	if IsKeyword(name) {
		s.emit(Keyword, j-s.pos)
	} else {
		s.emit(Identifier, j-s.pos)
	}
	return nil
}

func (s *scanner) scanString(prefixLen int) error {
	j := s.pos + prefixLen
	q := s.src[j]
	qs := string(q)

	if strings.HasPrefix(s.src[j:], qs+qs+qs) {
		j += 3
		for {
			if j >= len(s.src) {
				return &SyntaxError{Msg: "unterminated triple-quoted string", Line: s.line, Col: s.col}
			}
			if s.src[j] == '\\' {
				j += 2
				if j > len(s.src) {
					j = len(s.src)
				}
				continue
			}
			if s.src[j] == q && strings.HasPrefix(s.src[j:], qs+qs+qs) {
				j += 3
				break
			}
			j++
		}
	} else {
		j++
		for {
			if j >= len(s.src) {
				return &SyntaxError{Msg: "unterminated string literal", Line: s.line, Col: s.col}
			}
			c := s.src[j]
			if c == '\\' {
				j += 2
				if j > len(s.src) {
					j = len(s.src)
				}
				// an escaped CRLF consumes both bytes
				if j < len(s.src) && s.src[j-1] == '\r' && s.src[j] == '\n' {
					j++
				}
				continue
			}
			if c == '\n' || c == '\r' {
				return &SyntaxError{Msg: "EOL while scanning string literal", Line: s.line, Col: s.col}
			}
			j++
			if c == q {
				break
			}
		}
	}

	s.emit(String, j-s.pos)
	return nil
}

func (s *scanner) scanNumber() {
	j := s.pos
	n := len(s.src)

	if s.src[j] == '0' && j+1 < n && strings.IndexByte("xXoObB", s.src[j+1]) >= 0 {
		j += 2
		for j < n && (isHexDigit(s.src[j]) || s.src[j] == '_') {
			j++
		}
		s.emit(Number, j-s.pos)
		return
	}

	for j < n && (isDigit(s.src[j]) || s.src[j] == '_') {
		j++
	}
	if j < n && s.src[j] == '.' {
		j++
		for j < n && (isDigit(s.src[j]) || s.src[j] == '_') {
			j++
		}
	}
	if j < n && (s.src[j] == 'e' || s.src[j] == 'E') {
		if j+1 < n && isDigit(s.src[j+1]) {
			j += 2
		} else if j+2 < n && (s.src[j+1] == '+' || s.src[j+1] == '-') && isDigit(s.src[j+2]) {
			j += 3
		} else {
			goto imag
		}
		for j < n && (isDigit(s.src[j]) || s.src[j] == '_') {
			j++
		}
	}
imag:
	if j < n && (s.src[j] == 'j' || s.src[j] == 'J') {
		j++
	}
	s.emit(Number, j-s.pos)
}

var (
	ops3 = []string{"**=", "//=", ">>=", "<<=", "..."}
	ops2 = []string{"**", "//", ">>", "<<", "<=", ">=", "==", "!=", "->", ":=",
		"+=", "-=", "*=", "/=", "%=", "@=", "&=", "|=", "^="}
)

const ops1 = "+-*/%@&|^~<>=()[]{},:.;"

func (s *scanner) scanOperator() error {
	rest := s.src[s.pos:]
	for _, op := range ops3 {
		if strings.HasPrefix(rest, op) {
			s.emit(Operator, 3)
			return nil
		}
	}
	for _, op := range ops2 {
		if strings.HasPrefix(rest, op) {
			s.emit(Operator, 2)
			return nil
		}
	}

	c := rest[0]
	if strings.IndexByte(ops1, c) >= 0 {
		switch c {
		case '(', '[', '{':
			s.brackets = append(s.brackets, c)
		case ')', ']', '}':
			if len(s.brackets) == 0 || !bracketsMatch(s.brackets[len(s.brackets)-1], c) {
				return &SyntaxError{Msg: fmt.Sprintf("unmatched %q", string(c)), Line: s.line, Col: s.col}
			}
			s.brackets = s.brackets[:len(s.brackets)-1]
		}
		s.emit(Operator, 1)
		return nil
	}

	_, size := utf8.DecodeRuneInString(rest)
	s.emit(Unknown, size)
	return nil
}

func (s *scanner) emit(k Kind, length int) {
	text := s.src[s.pos : s.pos+length]
	s.toks = append(s.toks, Token{
		Kind:  k,
		Text:  text,
		Start: s.pos,
		End:   s.pos + length,
		Line:  s.line,
		Col:   s.col,
	})
	s.pos += length

	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		s.line += strings.Count(text, "\n")
		s.col = len(text) - i - 1
	} else if i := strings.LastIndexByte(text, '\r'); i >= 0 {
		s.line += strings.Count(text, "\r")
		s.col = len(text) - i - 1
	} else {
		s.col += len(text)
	}
}

// newlineLen returns the byte length of a newline at the start of s:
// 2 for CRLF, 1 for LF or lone CR, 0 otherwise.
func newlineLen(s string) int {
	if strings.HasPrefix(s, "\r\n") {
		return 2
	}
	if len(s) > 0 && (s[0] == '\n' || s[0] == '\r') {
		return 1
	}
	return 0
}

// IndentWidth computes the display width of an indentation run the way
// CPython does: tabs advance to the next multiple of 8, formfeed resets.
func IndentWidth(ws string) int {
	w := 0
	for i := 0; i < len(ws); i++ {
		switch ws[i] {
		case ' ':
			w++
		case '\t':
			w = w/8*8 + 8
		case '\f':
			w = 0
		}
	}
	return w
}

func isStringPrefix(name string) bool {
	if len(name) == 0 || len(name) > 2 {
		return false
	}
	for i := 0; i < len(name); i++ {
		if strings.IndexByte("rRbBuUfF", name[i]) < 0 {
			return false
		}
	}
	return true
}

func bracketsMatch(open, close byte) bool {
	switch open {
	case '(':
		return close == ')'
	case '[':
		return close == ']'
	case '{':
		return close == '}'
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
