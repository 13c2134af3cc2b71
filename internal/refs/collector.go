// Package refs collects the set of fragment identifiers that are actually
// referenced by at least one href within an EPUB's spine, so the
// XHTML-to-Markdown transform preserves only IDs worth preserving.
package refs

import "regexp"

var fragmentHrefRe = regexp.MustCompile(`href\s*=\s*["']([^"']*#([^"'#]+))["']`)

// Collect scans a set of spine XHTML documents and returns the union of
// every fragment named by an href="...#fragment" attribute, per
// spec.md §4.8. Unreferenced ids are the primary defense against
// markdown bloat from authoring-tool cruft (e.g. Calibre per-page ids).
func Collect(documents [][]byte) map[string]bool {
	ids := make(map[string]bool)
	for _, doc := range documents {
		for _, m := range fragmentHrefRe.FindAllSubmatch(doc, -1) {
			ids[string(m[2])] = true
		}
	}
	return ids
}
