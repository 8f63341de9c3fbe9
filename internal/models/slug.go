package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 96

// combining diacritical marks used by latin scripts; Thai vowel and tone
// marks live elsewhere and must survive.
var latinMarks = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// Slugify turns a title into a lower-case, dash separated url segment.
// Diacritics are stripped; letters outside latin (Thai script) are kept.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(latinMarks)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case unicode.In(r, unicode.Mn, unicode.Mc) && b.Len() > 0 && !dash:
			b.WriteRune(r)
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}

	out := strings.TrimSuffix(b.String(), "-")
	if r := []rune(out); len(r) > maxSlugLen {
		out = strings.TrimSuffix(string(r[:maxSlugLen]), "-")
	}
	return out
}
