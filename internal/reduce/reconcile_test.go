package reduce

import (
	"fmt"
	"testing"
)

func idents(names ...string) []SemToken {
	toks := make([]SemToken, len(names))
	for i, n := range names {
		toks[i] = SemToken{Kind: "identifier", Text: n}
	}
	return toks
}

func TestAlignIdentical(t *testing.T) {
	old := idents("a", "b", "c")
	al := align(old, old)
	for i := range old {
		if al.match[i] != i {
			t.Errorf("match[%d] = %d, want %d", i, al.match[i], i)
		}
	}
}

func TestAlignInsertion(t *testing.T) {
	old := idents("a", "b", "c")
	new := idents("a", "x", "b", "c")
	al := align(old, new)

	want := []int{0, 2, 3}
	for i := range want {
		if al.match[i] != want[i] {
			t.Errorf("match[%d] = %d, want %d", i, al.match[i], want[i])
		}
	}
}

func TestAlignDeletion(t *testing.T) {
	old := idents("a", "b", "c")
	new := idents("a", "c")
	al := align(old, new)

	if al.match[0] != 0 || al.match[1] != -1 || al.match[2] != 1 {
		t.Errorf("match = %v, want [0 -1 1]", al.match)
	}
}

func TestAlignKindMatters(t *testing.T) {
	old := []SemToken{{Kind: "identifier", Text: "x"}}
	new := []SemToken{{Kind: "string", Text: "x"}}
	al := align(old, new)
	if al.match[0] != -1 {
		t.Errorf("match[0] = %d, tokens of different kinds must not match", al.match[0])
	}
}

// Repeated tokens are everywhere in real source ("=", "(", ":"). The
// tie-break must keep matches near their original absolute positions
// instead of greedily pairing the first occurrences.
func TestAlignLocalityTieBreak(t *testing.T) {
	old := idents("x", "=", "y", "=")
	new := idents("x", "=", "z", "w", "=")
	al := align(old, new)

	if al.match[1] != 1 {
		t.Errorf("first = matched %d, want 1", al.match[1])
	}
	if al.match[3] != 4 {
		t.Errorf("second = matched %d, want 4", al.match[3])
	}
}

func TestResolveGapDirect(t *testing.T) {
	old := idents("a", "b", "c")
	al := align(old, old)

	if g, ok := al.resolveGap(1, Before); !ok || g != 1 {
		t.Errorf("resolveGap(1, before) = %d,%v, want 1,true", g, ok)
	}
	if g, ok := al.resolveGap(2, After); !ok || g != 3 {
		t.Errorf("resolveGap(2, after) = %d,%v, want 3,true", g, ok)
	}
}

func TestResolveGapViaNeighbor(t *testing.T) {
	old := idents("a", "b", "c")
	new := idents("a", "c")
	al := align(old, new)

	// b is gone. A Before anchor on b snaps to the next survivor, c.
	if g, ok := al.resolveGap(1, Before); !ok || g != 1 {
		t.Errorf("resolveGap(1, before) = %d,%v, want 1,true", g, ok)
	}
	// An After anchor on b snaps after the previous survivor, a.
	if g, ok := al.resolveGap(1, After); !ok || g != 1 {
		t.Errorf("resolveGap(1, after) = %d,%v, want 1,true", g, ok)
	}
}

func TestResolveGapOutsideWindow(t *testing.T) {
	// Every old token is gone: nothing to resolve against.
	old := idents("a", "b", "c")
	al := align(old, nil)

	if _, ok := al.resolveGap(1, Before); ok {
		t.Error("resolveGap resolved with no surviving tokens")
	}
}

func TestResolveGapWindowBound(t *testing.T) {
	// One survivor far past the window: anchors near the start must fail,
	// anchors within reach must succeed.
	n := localityWindow * 3
	old := make([]SemToken, n)
	for i := range old {
		old[i] = SemToken{Kind: "identifier", Text: fmt.Sprintf("v%d", i)}
	}
	new := []SemToken{old[n-1]}
	al := align(old, new)

	if _, ok := al.resolveGap(0, Before); ok {
		t.Error("anchor 0 resolved across more than localityWindow tokens")
	}
	if g, ok := al.resolveGap(n-1-localityWindow, Before); !ok || g != 0 {
		t.Errorf("anchor at window edge = %d,%v, want 0,true", g, ok)
	}
}

func TestResolveGapEmptyOldSequence(t *testing.T) {
	al := align(nil, idents("a"))
	if g, ok := al.resolveGap(0, Before); !ok || g != 0 {
		t.Errorf("resolveGap on empty recorded sequence = %d,%v, want 0,true", g, ok)
	}
}

func TestResolveToken(t *testing.T) {
	old := idents("a", "b")
	new := idents("b")
	al := align(old, new)

	if _, ok := al.resolveToken(0); ok {
		t.Error("resolveToken resolved a deleted token")
	}
	if j, ok := al.resolveToken(1); !ok || j != 0 {
		t.Errorf("resolveToken(1) = %d,%v, want 0,true", j, ok)
	}
}

func TestPrefixSuffixFallback(t *testing.T) {
	old := idents("a", "b", "mid", "y", "z")
	new := idents("a", "b", "other", "y", "z")

	a := &alignment{match: make([]int, len(old)), n: len(old), m: len(new)}
	for i := range a.match {
		a.match[i] = -1
	}
	a.prefixSuffix(old, new)

	want := []int{0, 1, -1, 3, 4}
	for i := range want {
		if a.match[i] != want[i] {
			t.Errorf("match[%d] = %d, want %d", i, a.match[i], want[i])
		}
	}
}
