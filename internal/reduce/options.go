package reduce

// Options control which removable units the reducer elides. The zero
// value is NOT the default configuration; use DefaultOptions.
//
// Options are immutable once constructed and safe to share across
// concurrent Reduce/Reconstruct calls.
type Options struct {
	// PreserveDocstrings keeps docstring text visible in the reduced
	// output. A docstring map entry is recorded either way, so the map
	// is always sufficient for exact reconstruction.
	PreserveDocstrings bool `json:"preserveDocstrings" toml:"preserve_docstrings"`

	// CompactMultilineStrings flattens triple-quoted literals onto one
	// line when the flattening provably preserves their runtime value.
	CompactMultilineStrings bool `json:"compactMultilineStrings" toml:"compact_multiline_strings"`

	// StripBlankLines collapses runs of blank lines to a single newline.
	StripBlankLines bool `json:"stripBlankLines" toml:"strip_blank_lines"`

	// CollapseInlineWhitespace collapses redundant spaces and tabs
	// inside a line to a single space. Indentation is never touched.
	CollapseInlineWhitespace bool `json:"collapseInlineWhitespace" toml:"collapse_inline_whitespace"`
}

// DefaultOptions returns the standard reduction configuration.
func DefaultOptions() Options {
	return Options{
		PreserveDocstrings:       true,
		CompactMultilineStrings:  false,
		StripBlankLines:          true,
		CollapseInlineWhitespace: true,
	}
}
