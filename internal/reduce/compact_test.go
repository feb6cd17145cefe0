package reduce

import "testing"

func TestCompactLiteral(t *testing.T) {
	cases := []struct {
		lit  string
		want string
		ok   bool
	}{
		{"'''a\nb'''", `'a\nb'`, true},
		{"\"\"\"a\nb\"\"\"", `"a\nb"`, true},
		{"'''a\r\nb'''", `'a\nb'`, true},
		{"'''a\rb'''", `'a\nb'`, true},
		{"'''say \"hi\"\nok'''", `'say "hi"\nok'`, true},
		{"'''it's\nfine'''", `'it\'s\nfine'`, true},
		{"b'''a\nb'''", `b'a\nb'`, true},
		{"u'''a\nb'''", `u'a\nb'`, true},

		// single line: nothing to compact
		{"'''ab'''", "", false},
		// not triple-quoted
		{"'a\nb'", "", false},
		// raw and formatted prefixes change escape semantics
		{"r'''a\nb'''", "", false},
		{"f'''a\n{b}'''", "", false},
		{"rb'''a\nb'''", "", false},
		{"F'''a\nb'''", "", false},
		// a body with backslashes already has escape semantics
		{"'''a\\t\nb'''", "", false},
		// degenerate
		{"", "", false},
		{"x", "", false},
	}

	for _, c := range cases {
		got, ok := compactLiteral(c.lit)
		if ok != c.ok {
			t.Errorf("compactLiteral(%q) ok = %v, want %v", c.lit, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("compactLiteral(%q) = %q, want %q", c.lit, got, c.want)
		}
	}
}
