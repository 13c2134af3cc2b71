// Package sourcetree reads and writes the opinionated filesystem
// projection of an EPUB: metadata.yml, SUMMARY.md, and the chapters/
// styles/assets directories described in spec.md §6.2.
package sourcetree

import "strings"

// transliterate maps a small set of accented Latin characters to their
// plain ASCII equivalent, mirroring the coverage of the original
// implementation's slugify dependency for the accented titles real EPUBs
// actually carry (it does not attempt full Unicode folding).
var transliterate = map[rune]string{
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ä': "a", 'å': "a",
	'è': "e", 'é': "e", 'ê': "e", 'ë': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i",
	'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ö': "o",
	'ù': "u", 'ú': "u", 'û': "u", 'ü': "u",
	'ý': "y", 'ÿ': "y",
	'ñ': "n", 'ç': "c",
	'À': "a", 'Á': "a", 'Â': "a", 'Ã': "a", 'Ä': "a", 'Å': "a",
	'È': "e", 'É': "e", 'Ê': "e", 'Ë': "e",
	'Ì': "i", 'Í': "i", 'Î': "i", 'Ï': "i",
	'Ò': "o", 'Ó': "o", 'Ô': "o", 'Õ': "o", 'Ö': "o",
	'Ù': "u", 'Ú': "u", 'Û': "u", 'Ü': "u",
	'Ý': "y", 'Ñ': "n", 'Ç': "c",
}

// Slugify lowercases s, transliterates known accented characters, and
// collapses every run of non-alphanumeric characters into a single "-",
// trimming leading/trailing dashes. Grounded on the original
// implementation's chapter-filename slugger (original_source/src/extract/chapter_org.rs,
// util.rs).
func Slugify(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		if repl, ok := transliterate[r]; ok {
			b.WriteString(repl)
			lastDash = false
			continue
		}
		lower := toLowerASCII(r)
		if isAlnum(lower) {
			b.WriteRune(lower)
			lastDash = false
			continue
		}
		if !lastDash && b.Len() > 0 {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func toLowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
