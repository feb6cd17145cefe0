package reduce

import (
	"strings"

	"github.com/lazypower/condense/internal/pytok"
)

// Reduce strips removable units (comments, docstrings, redundant
// whitespace, compactable multi-line literals) from Python source and
// returns the reduced text together with the anchored reduction map that
// replays every removal. It is a pure function of its inputs: no state
// survives the call.
//
// Semantic tokens are never altered in content, with the single
// exception of provably reversible string compaction. Constructs that
// cannot be classified safely pass through verbatim with no edit.
func Reduce(source string, opts Options) (string, *Map, error) {
	toks, err := pytok.Tokenize(source)
	if err != nil {
		return "", nil, err
	}
	r := &reducer{toks: toks, opts: opts}
	return r.run()
}

type reducer struct {
	toks []pytok.Token
	opts Options
}

// gapItem is one trivia unit between two surviving semantic tokens. An
// elided docstring folds into the gap that replaces it.
type gapItem struct {
	tok pytok.Token
	doc bool
}

func (r *reducer) run() (string, *Map, error) {
	lines := r.logicalLines()
	isDoc, elide := r.classifyDocstrings(lines)

	// Partition the token stream into surviving semantic tokens and the
	// gaps between them. Gap p precedes kept token p; the final gap
	// trails the last token.
	var kept []pytok.Token
	var keptRaw []int
	gaps := [][]gapItem{nil}
	for i, t := range r.toks {
		switch {
		case t.Kind.Semantic() && !elide[i]:
			kept = append(kept, t)
			keptRaw = append(keptRaw, i)
			gaps = append(gaps, nil)
		case t.Kind.Semantic():
			gaps[len(gaps)-1] = append(gaps[len(gaps)-1], gapItem{tok: t, doc: true})
		default:
			gaps[len(gaps)-1] = append(gaps[len(gaps)-1], gapItem{tok: t})
		}
	}

	m := &Map{Version: MapVersion, Options: r.opts}
	var out strings.Builder

	for p := 0; p <= len(kept); p++ {
		r.emitGap(m, &out, gaps[p], p, len(kept), kept)
		if p == len(kept) {
			break
		}

		text := kept[p].Text
		if isDoc[keptRaw[p]] {
			m.Edits = append(m.Edits, Edit{
				Type:        EditDocstring,
				AnchorIndex: p,
				AnchorSide:  Before,
				Payload:     text,
				Elided:      false,
				Position:    Position{Line: kept[p].Line, Col: kept[p].Col},
			})
		} else if r.opts.CompactMultilineStrings && kept[p].Kind == pytok.String {
			if compacted, ok := compactLiteral(text); ok {
				m.Edits = append(m.Edits, Edit{
					Type:        EditStringCompaction,
					AnchorIndex: p,
					AnchorSide:  Before,
					Payload:     text,
					Compacted:   compacted,
					Position:    Position{Line: kept[p].Line, Col: kept[p].Col},
				})
				text = compacted
			}
		}

		m.Tokens = append(m.Tokens, SemToken{Kind: kept[p].Kind.String(), Text: text})
		out.WriteString(text)
	}

	return out.String(), m, nil
}

// lineInfo describes one logical line: the raw indices of its semantic
// tokens and its indentation.
type lineInfo struct {
	sems   []int
	indent string
	width  int
}

// logicalLines groups semantic tokens into logical lines. Newlines at
// bracket depth 0 end a logical line; backslash continuations never
// produce Newline tokens, so they extend the line for free.
func (r *reducer) logicalLines() []lineInfo {
	var lines []lineInfo
	depth := 0
	newLine := true
	curIndent := ""

	for i, t := range r.toks {
		switch t.Kind {
		case pytok.Newline:
			if depth == 0 {
				newLine = true
				curIndent = ""
			}
		case pytok.Indent:
			curIndent = t.Text
		case pytok.Comment, pytok.Whitespace:
		default:
			if newLine || len(lines) == 0 {
				lines = append(lines, lineInfo{indent: curIndent, width: pytok.IndentWidth(curIndent)})
				newLine = false
			}
			ln := &lines[len(lines)-1]
			ln.sems = append(ln.sems, i)
			if t.Kind == pytok.Operator {
				switch t.Text {
				case "(", "[", "{":
					depth++
				case ")", "]", "}":
					if depth > 0 {
						depth--
					}
				}
			}
		}
	}
	return lines
}

// classifyDocstrings finds string literals in docstring position: a
// statement consisting of a single string literal that is either the
// first statement of the module or the first statement under a
// def/class header. Returns which raw tokens are docstrings and which
// of those are elided from the reduced text.
func (r *reducer) classifyDocstrings(lines []lineInfo) (isDoc, elide map[int]bool) {
	isDoc = make(map[int]bool)
	elide = make(map[int]bool)

	for li, ln := range lines {
		if len(ln.sems) != 1 || r.toks[ln.sems[0]].Kind != pytok.String {
			continue
		}
		raw := ln.sems[0]

		if li == 0 {
			if ln.width != 0 {
				continue
			}
			isDoc[raw] = true
			if !r.opts.PreserveDocstrings {
				elide[raw] = true
			}
			continue
		}

		prev := lines[li-1]
		if !r.isHeaderLine(prev) || ln.width <= prev.width {
			continue
		}
		isDoc[raw] = true
		if r.opts.PreserveDocstrings {
			continue
		}
		// A docstring that is the sole statement of its suite must stay:
		// eliding it would leave the suite empty and the reduced text
		// unparseable. Passthrough, recorded non-elided.
		sole := li+1 >= len(lines) || lines[li+1].width < ln.width
		if !sole {
			elide[raw] = true
		}
	}
	return isDoc, elide
}

// isHeaderLine reports whether a logical line is a def/class header
// ending in a colon.
func (r *reducer) isHeaderLine(ln lineInfo) bool {
	if len(ln.sems) < 2 {
		return false
	}
	first := r.toks[ln.sems[0]]
	if first.Kind != pytok.Keyword {
		return false
	}
	switch first.Text {
	case "def", "class":
	case "async":
		second := r.toks[ln.sems[1]]
		if second.Kind != pytok.Keyword || second.Text != "def" {
			return false
		}
	default:
		return false
	}
	last := r.toks[ln.sems[len(ln.sems)-1]]
	return last.Kind == pytok.Operator && last.Text == ":"
}

// emitGap writes the canonical form of one inter-token gap and records
// the edits that replay its original bytes. Gaps whose canonical form
// equals the original are written verbatim with no edit.
func (r *reducer) emitGap(m *Map, out *strings.Builder, items []gapItem, p, n int, kept []pytok.Token) {
	if len(items) == 0 {
		return
	}

	var orig strings.Builder
	for _, it := range items {
		orig.WriteString(it.tok.Text)
	}
	g := orig.String()

	// Backslash continuations are structural; a gap carrying one passes
	// through untouched rather than risk the round-trip guarantee.
	for _, it := range items {
		if it.tok.Kind == pytok.Whitespace && strings.IndexByte(it.tok.Text, '\\') >= 0 {
			out.WriteString(g)
			return
		}
	}

	c := r.canonicalGap(items, p, n)
	if c == g {
		out.WriteString(g)
		return
	}

	// Gap edits ride with the semantic token they follow, so a trailing
	// comment stays attached to its line when the lines around it change.
	// Only the leading gap, which follows nothing, anchors before token 0.
	anchorIdx, side := 0, Before
	if p > 0 {
		anchorIdx, side = p-1, After
	}

	prevEndLine := -1
	if p > 0 {
		prev := kept[p-1]
		prevEndLine = prev.Line + strings.Count(prev.Text, "\n")
	}

	var buf strings.Builder
	var bufPos Position
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		m.Edits = append(m.Edits, Edit{
			Type:        EditWhitespace,
			AnchorIndex: anchorIdx,
			AnchorSide:  side,
			Payload:     buf.String(),
			Position:    bufPos,
		})
		buf.Reset()
	}

	for _, it := range items {
		switch {
		case it.doc:
			flush()
			m.Edits = append(m.Edits, Edit{
				Type:        EditDocstring,
				AnchorIndex: anchorIdx,
				AnchorSide:  side,
				Payload:     it.tok.Text,
				Elided:      true,
				Position:    Position{Line: it.tok.Line, Col: it.tok.Col},
			})
		case it.tok.Kind == pytok.Comment:
			flush()
			m.Edits = append(m.Edits, Edit{
				Type:        EditComment,
				AnchorIndex: anchorIdx,
				AnchorSide:  side,
				Payload:     it.tok.Text,
				Inline:      p > 0 && it.tok.Line == prevEndLine,
				Position:    Position{Line: it.tok.Line, Col: it.tok.Col},
			})
		default:
			if buf.Len() == 0 {
				bufPos = Position{Line: it.tok.Line, Col: it.tok.Col}
			}
			buf.WriteString(it.tok.Text)
		}
	}
	flush()

	out.WriteString(c)
}

// canonicalGap computes the normalized separator for a gap. Comments and
// elided docstrings always drop out; blank-line and inline-whitespace
// handling follow the options. The indentation that precedes the next
// token is copied through untouched: block structure is sacred.
func (r *reducer) canonicalGap(items []gapItem, p, n int) string {
	if n == 0 {
		return ""
	}

	firstNL, lastNL := -1, -1
	for i, it := range items {
		if it.tok.Kind == pytok.Newline {
			if firstNL < 0 {
				firstNL = i
			}
			lastNL = i
		}
	}

	ws := func(from, to int) string {
		var b strings.Builder
		for _, it := range items[from:to] {
			if it.tok.Kind == pytok.Whitespace || it.tok.Kind == pytok.Indent {
				b.WriteString(it.tok.Text)
			}
		}
		return b.String()
	}

	if lastNL < 0 {
		w := ws(0, len(items))
		switch {
		case p == 0:
			// leading indentation of the first line
			return w
		case p == n:
			if r.opts.CollapseInlineWhitespace {
				return ""
			}
			return w
		default:
			if w == "" || !r.opts.CollapseInlineWhitespace {
				return w
			}
			return " "
		}
	}

	pre := ws(0, firstNL)
	if r.opts.CollapseInlineWhitespace {
		pre = ""
	}

	var mid string
	if r.opts.StripBlankLines {
		mid = items[lastNL].tok.Text
	} else {
		var b strings.Builder
		for _, it := range items[firstNL : lastNL+1] {
			switch it.tok.Kind {
			case pytok.Newline, pytok.Whitespace, pytok.Indent:
				b.WriteString(it.tok.Text)
			}
		}
		mid = b.String()
	}

	trail := ws(lastNL+1, len(items))

	if p == 0 {
		if r.opts.StripBlankLines {
			return trail
		}
		return pre + mid + trail
	}
	if p == n && r.opts.CollapseInlineWhitespace {
		trail = ""
	}
	return pre + mid + trail
}

// splitGaps separates a token stream into its semantic tokens and the
// trivia text between them. gaps has len(sem)+1 entries; gaps[i]
// precedes sem[i] and the last entry trails the final token.
func splitGaps(toks []pytok.Token) (sem []pytok.Token, gaps []string) {
	gaps = []string{""}
	var cur strings.Builder
	for _, t := range toks {
		if t.Kind.Semantic() {
			gaps[len(gaps)-1] = cur.String()
			cur.Reset()
			sem = append(sem, t)
			gaps = append(gaps, "")
		} else {
			cur.WriteString(t.Text)
		}
	}
	gaps[len(gaps)-1] = cur.String()
	return sem, gaps
}
