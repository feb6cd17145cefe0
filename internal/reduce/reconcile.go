package reduce

const (
	// localityWindow bounds how many semantic tokens anchor resolution
	// may drift from the anchor's recorded neighbors before the anchor
	// is reported unresolved.
	localityWindow = 24

	// maxLCSCells caps the alignment DP table. Past it, alignment falls
	// back to common prefix/suffix matching; mid-file anchors in a
	// heavily edited huge file then resolve through the window search
	// or surface as discrepancies.
	maxLCSCells = 16 << 20
)

// alignment maps each index of the map's recorded token sequence to an
// index in the sequence re-extracted from the supplied reduced text, or
// -1 where the token has no counterpart.
type alignment struct {
	match []int
	n, m  int
}

// align computes a longest-common-subsequence alignment over token
// identity (kind + text). Ties between equally good paths advance the
// side that lags behind, which keeps matches close to their original
// absolute positions and reinsertions spatially stable.
func align(old, new []SemToken) *alignment {
	n, m := len(old), len(new)
	a := &alignment{match: make([]int, n), n: n, m: m}
	for i := range a.match {
		a.match[i] = -1
	}
	if n == 0 || m == 0 {
		return a
	}
	if n*m > maxLCSCells {
		a.prefixSuffix(old, new)
		return a
	}

	// L[i][j] holds the LCS length of old[i:] vs new[j:].
	L := make([][]int, n+1)
	for i := range L {
		L[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case old[i] == new[j]:
				L[i][j] = L[i+1][j+1] + 1
			case L[i+1][j] >= L[i][j+1]:
				L[i][j] = L[i+1][j]
			default:
				L[i][j] = L[i][j+1]
			}
		}
	}

	for i, j := 0, 0; i < n && j < m; {
		switch {
		case old[i] == new[j] && L[i][j] == L[i+1][j+1]+1:
			a.match[i] = j
			i++
			j++
		case L[i+1][j] > L[i][j+1]:
			i++
		case L[i+1][j] < L[i][j+1]:
			j++
		case i <= j:
			// both skips preserve the LCS; advance the lagging side so
			// |i-j| stays minimal and repeated tokens pair up with their
			// positionally nearest occurrence
			i++
		default:
			j++
		}
	}
	return a
}

func (a *alignment) prefixSuffix(old, new []SemToken) {
	i := 0
	for i < a.n && i < a.m && old[i] == new[i] {
		a.match[i] = i
		i++
	}
	k := 0
	for k < a.n-i && k < a.m-i && old[a.n-1-k] == new[a.m-1-k] {
		a.match[a.n-1-k] = a.m - 1 - k
		k++
	}
}

// resolveGap maps an anchor on the recorded sequence to a physical gap
// position in the new sequence: gap g sits immediately before new token
// g, and gap m trails the final token. When the anchor token itself is
// gone, the nearest surviving neighbor within the locality window stands
// in; past the window the anchor is unresolved.
func (a *alignment) resolveGap(idx int, side Side) (int, bool) {
	if a.n == 0 {
		return 0, true
	}

	after := side == After
	if j := a.match[idx]; j >= 0 {
		if after {
			return j + 1, true
		}
		return j, true
	}

	for k := 1; k <= localityWindow; k++ {
		fwd, bwd := idx+k, idx-k
		if after {
			if bwd >= 0 && a.match[bwd] >= 0 {
				return a.match[bwd] + 1, true
			}
			if fwd < a.n && a.match[fwd] >= 0 {
				return a.match[fwd], true
			}
		} else {
			if fwd < a.n && a.match[fwd] >= 0 {
				return a.match[fwd], true
			}
			if bwd >= 0 && a.match[bwd] >= 0 {
				return a.match[bwd] + 1, true
			}
		}
	}
	return 0, false
}

// resolveToken maps a recorded token index to its match in the new
// sequence, if it survived.
func (a *alignment) resolveToken(idx int) (int, bool) {
	if idx < 0 || idx >= a.n || a.match[idx] < 0 {
		return 0, false
	}
	return a.match[idx], true
}
