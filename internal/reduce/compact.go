package reduce

import "strings"

// compactLiteral flattens a triple-quoted string literal onto one line,
// preserving its runtime value: physical newlines become \n escapes
// (universal-newline translation, so CRLF and lone CR also map to \n)
// and embedded quote characters are escaped.
//
// Raw and formatted strings cannot be rewritten this way, and a body
// containing any backslash already has escape semantics that flattening
// could disturb. Those literals are rejected: the caller leaves them
// untouched with no edit.
func compactLiteral(lit string) (string, bool) {
	i := 0
	for i < len(lit) && lit[i] != '\'' && lit[i] != '"' {
		i++
	}
	if i > 2 || i >= len(lit) {
		return "", false
	}
	prefix := lit[:i]
	if strings.ContainsAny(prefix, "rRfF") {
		return "", false
	}

	q := lit[i]
	qs := string(q)
	if len(lit)-i < 6 || !strings.HasPrefix(lit[i:], qs+qs+qs) || !strings.HasSuffix(lit, qs+qs+qs) {
		return "", false
	}
	body := lit[i+3 : len(lit)-3]
	if !strings.ContainsAny(body, "\n\r") {
		return "", false
	}
	if strings.IndexByte(body, '\\') >= 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte(q)
	for j := 0; j < len(body); j++ {
		switch c := body[j]; {
		case c == '\r':
			if j+1 < len(body) && body[j+1] == '\n' {
				j++
			}
			b.WriteString(`\n`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == q:
			b.WriteByte('\\')
			b.WriteByte(q)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(q)
	return b.String(), true
}
