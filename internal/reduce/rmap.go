package reduce

import (
	"encoding/json"
	"fmt"
)

// MapVersion is the current reduction map schema version.
const MapVersion = 1

// EditType tags the variant of a recorded edit. Reconstruction skips
// unrecognized types non-fatally, recording a discrepancy, so newer maps
// degrade instead of crashing older readers.
type EditType string

const (
	EditComment          EditType = "comment"
	EditDocstring        EditType = "docstring"
	EditWhitespace       EditType = "whitespace"
	EditStringCompaction EditType = "stringCompaction"
)

// Side places an anchor relative to its semantic token.
type Side string

const (
	Before Side = "before"
	After  Side = "after"
)

// Position is the line/column of the removed unit in the original source.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// SemToken is one entry of the semantic token sequence a map was built
// against. Token identity for reconciliation is the (Kind, Text) pair.
type SemToken struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Edit is one anchored, replayable removal or rewrite. Edits sharing an
// anchor replay in recorded order; the concatenation of their payloads
// reproduces the original bytes of the gap they describe.
type Edit struct {
	Type        EditType `json:"type"`
	AnchorIndex int      `json:"anchorIndex"`
	AnchorSide  Side     `json:"anchorSide"`
	Payload     string   `json:"payload"`

	// Inline marks a comment that shared a line with code.
	Inline bool `json:"inline,omitempty"`
	// Elided marks a docstring that was removed from the reduced text.
	// Non-elided docstring edits are informational and replay as no-ops.
	Elided bool `json:"elided,omitempty"`
	// Compacted holds the flattened literal a stringCompaction edit put
	// into the reduced text; Payload holds the original literal.
	Compacted string `json:"compacted,omitempty"`

	Position Position `json:"position"`
}

// Map is the serializable record of everything reduction removed or
// rewrote. Replaying its edits in anchor order against the exact token
// sequence it records reconstructs the original source byte for byte.
// The engine keeps no map state between calls; a Map is owned by the
// caller once returned.
type Map struct {
	Version int        `json:"version"`
	Tokens  []SemToken `json:"tokens"`
	Edits   []Edit     `json:"edits"`
	Options Options    `json:"options"`
}

// CorruptError reports a structurally invalid map: a caller-level
// invariant violation, always fatal to reconstruction.
type CorruptError struct {
	Reason string
}

func (e *CorruptError) Error() string {
	return "reduction map corrupt: " + e.Reason
}

// Marshal serializes the map as indented JSON.
func (m *Map) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal reduction map: %w", err)
	}
	return data, nil
}

// ParseMap deserializes and structurally validates a reduction map.
func ParseMap(data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &CorruptError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the structural invariants of the map against its own
// recorded token sequence. Unknown edit types pass validation (they skip
// at replay); bad anchors, sides, and missing payloads do not.
func (m *Map) Validate() error {
	if m.Version < 1 {
		return &CorruptError{Reason: fmt.Sprintf("unsupported version %d", m.Version)}
	}

	prevSlot := -1
	for i, e := range m.Edits {
		if e.AnchorSide != Before && e.AnchorSide != After {
			return &CorruptError{Reason: fmt.Sprintf("edit %d: bad anchor side %q", i, e.AnchorSide)}
		}
		if len(m.Tokens) == 0 {
			if e.AnchorIndex != 0 || e.AnchorSide != Before {
				return &CorruptError{Reason: fmt.Sprintf("edit %d: anchor %d outside empty token sequence", i, e.AnchorIndex)}
			}
		} else if e.AnchorIndex < 0 || e.AnchorIndex >= len(m.Tokens) {
			return &CorruptError{Reason: fmt.Sprintf("edit %d: anchor %d out of range [0,%d)", i, e.AnchorIndex, len(m.Tokens))}
		}

		switch e.Type {
		case EditComment, EditDocstring:
			if e.Payload == "" {
				return &CorruptError{Reason: fmt.Sprintf("edit %d: %s edit with empty payload", i, e.Type)}
			}
		case EditStringCompaction:
			if e.Payload == "" || e.Compacted == "" {
				return &CorruptError{Reason: fmt.Sprintf("edit %d: stringCompaction edit missing literal", i)}
			}
		}

		slot := e.AnchorIndex * 2
		if e.AnchorSide == After {
			slot++
		}
		if slot < prevSlot {
			return &CorruptError{Reason: fmt.Sprintf("edit %d: edits out of anchor order", i)}
		}
		prevSlot = slot
	}
	return nil
}
