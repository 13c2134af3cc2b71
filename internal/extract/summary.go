package extract

import (
	"strings"

	"epx/epub"
)

// GenerateSummary renders SUMMARY.md from a navigation tree, linking each
// entry to its extracted chapter file when one exists, per spec.md §4.9
// step 7. Grounded on original_source/src/extract/summary.rs.
func GenerateSummary(toc []*epub.NavPoint, chapterFiles []ChapterFile) string {
	var b strings.Builder
	b.WriteString("# Summary\n\n")
	writeNavEntries(&b, toc, chapterFiles, 0)
	return b.String()
}

func writeNavEntries(b *strings.Builder, points []*epub.NavPoint, chapterFiles []ChapterFile, indent int) {
	for _, p := range points {
		prefix := strings.Repeat("  ", indent)
		href := stripFragment(p.Href)

		link := ""
		for _, cf := range chapterFiles {
			if href == cf.ZipHref || strings.HasSuffix(cf.ZipHref, href) {
				link = "chapters/" + cf.Filename
				break
			}
		}

		if link != "" {
			b.WriteString(prefix + "- [" + p.Label + "](" + link + ")\n")
		} else {
			b.WriteString(prefix + "- " + p.Label + "\n")
		}

		writeNavEntries(b, p.Children, chapterFiles, indent+1)
	}
}
