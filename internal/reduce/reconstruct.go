package reduce

import (
	"fmt"
	"strings"

	"github.com/lazypower/condense/internal/pytok"
)

// Discrepancy reports an edit that could not be replayed. Discrepancies
// are data, not failures: the caller decides whether they matter.
type Discrepancy struct {
	EditIndex int      `json:"editIndex"`
	Type      EditType `json:"type"`
	Reason    string   `json:"reason"`
	Position  Position `json:"position"`
}

// Result is the output of Reconstruct: the rebuilt text plus every edit
// that had to be dropped along the way.
type Result struct {
	Text          string        `json:"text"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

// Reconstruct replays a reduction map against reduced text, which may
// have been modified since the map was built. When the text's semantic
// token sequence still matches the map's recorded sequence the output
// equals the original source byte for byte with zero discrepancies.
// Otherwise the sequences are reconciled by alignment and every edit
// whose anchor cannot be resolved is dropped and reported; content is
// never fabricated for an unresolved anchor.
//
// The only fatal failures are a structurally invalid map (CorruptError)
// and reduced text that cannot be tokenized (pytok.SyntaxError).
func Reconstruct(reduced string, m *Map) (Result, error) {
	if err := m.Validate(); err != nil {
		return Result{}, err
	}

	toks, err := pytok.Tokenize(reduced)
	if err != nil {
		return Result{}, err
	}
	sem, gaps := splitGaps(toks)

	actual := make([]SemToken, len(sem))
	for i, t := range sem {
		actual[i] = SemToken{Kind: t.Kind.String(), Text: t.Text}
	}

	exact := semEqual(m.Tokens, actual)
	var al *alignment
	if !exact {
		al = align(m.Tokens, actual)
	}

	var (
		result       Result
		replacements = make(map[int][]string)
		tokenSubst   = make(map[int]string)
	)
	drop := func(i int, e Edit, reason string) {
		result.Discrepancies = append(result.Discrepancies, Discrepancy{
			EditIndex: i,
			Type:      e.Type,
			Reason:    reason,
			Position:  e.Position,
		})
	}

	// Edits sharing an anchor resolve as a group so one gap's payloads
	// stay contiguous and ordered.
	for i := 0; i < len(m.Edits); {
		j := i
		for j < len(m.Edits) &&
			m.Edits[j].AnchorIndex == m.Edits[i].AnchorIndex &&
			m.Edits[j].AnchorSide == m.Edits[i].AnchorSide {
			j++
		}

		gap, gapOK := resolveEditGap(m.Edits[i], exact, al, len(actual))

		for k := i; k < j; k++ {
			e := m.Edits[k]
			switch e.Type {
			case EditWhitespace, EditComment:
				if !gapOK {
					drop(k, e, "anchor unresolved within locality window")
					continue
				}
				replacements[gap] = append(replacements[gap], e.Payload)

			case EditDocstring:
				if !e.Elided {
					// informational marker; the docstring is already in
					// the text
					continue
				}
				if !gapOK {
					drop(k, e, "anchor unresolved within locality window")
					continue
				}
				replacements[gap] = append(replacements[gap], e.Payload)

			case EditStringCompaction:
				t, ok := resolveEditToken(e, exact, al)
				if !ok {
					drop(k, e, "anchor unresolved within locality window")
					continue
				}
				if actual[t].Text != e.Compacted {
					drop(k, e, "compacted literal no longer matches")
					continue
				}
				tokenSubst[t] = e.Payload

			default:
				drop(k, e, fmt.Sprintf("unknown edit type %q", e.Type))
			}
		}
		i = j
	}

	var b strings.Builder
	for t := 0; t <= len(sem); t++ {
		if parts, ok := replacements[t]; ok {
			for _, s := range parts {
				b.WriteString(s)
			}
		} else {
			b.WriteString(gaps[t])
		}
		if t < len(sem) {
			if sub, ok := tokenSubst[t]; ok {
				b.WriteString(sub)
			} else {
				b.WriteString(sem[t].Text)
			}
		}
	}
	result.Text = b.String()
	return result, nil
}

func resolveEditGap(e Edit, exact bool, al *alignment, m int) (int, bool) {
	if exact {
		g := e.AnchorIndex
		if e.AnchorSide == After {
			g++
		}
		if g > m {
			g = m
		}
		return g, true
	}
	g, ok := al.resolveGap(e.AnchorIndex, e.AnchorSide)
	if ok && g > m {
		g = m
	}
	return g, ok
}

func resolveEditToken(e Edit, exact bool, al *alignment) (int, bool) {
	if exact {
		return e.AnchorIndex, true
	}
	return al.resolveToken(e.AnchorIndex)
}

func semEqual(a, b []SemToken) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
