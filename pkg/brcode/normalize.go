package brcode

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeText decomposes s, drops combining marks and anything outside
// printable ASCII, upper-cases it and truncates to max characters.
func normalizeText(s string, max int) string {
	// transform.Chain keeps state, so build one per call.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r < 0x20 || r > 0x7e })),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}
	out = strings.ToUpper(out)
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// NormalizeReference strips every non-alphanumeric character from ref.
func NormalizeReference(ref string) string {
	var b strings.Builder
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		if isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
