package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// linkAnchorRe and headingIDRe together match every form of anchor id an
// extracted chapter file can carry, per spec.md §4.9 step 9: a raw
// <a id="x"></a>, a Pandoc attribute span on a heading ("## Title {#x}"),
// and a standalone Pandoc span ("[]{#x}"). mdLinkRe matches a Markdown
// link's target.
var (
	linkAnchorRe = regexp.MustCompile(`<a\s+id="([^"]+)"`)
	headingIDRe  = regexp.MustCompile(`\{#([^}]+)\}`)
	mdLinkRe     = regexp.MustCompile(`\]\(([^)]+)\)`)
)

// validateLinks re-scans every extracted chapter's Markdown for intra-book
// links and reports, as warnings, any link whose target file is not among
// the extracted chapters or whose fragment does not match an anchor id
// collected from the target (or, for same-file links, the source) file.
// Non-fatal per spec.md §4.13: a broken cross-reference never aborts
// extraction, it is surfaced for the caller to act on.
func validateLinks(files []ChapterFile, markdown []string) []string {
	anchorsByFile := make(map[string]map[string]bool, len(files))
	for i, f := range files {
		anchorsByFile[f.Filename] = collectAnchors(markdown[i])
	}

	var warnings []string
	for i, f := range files {
		for _, m := range mdLinkRe.FindAllStringSubmatch(markdown[i], -1) {
			target := m[1]
			if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") || strings.HasPrefix(target, "mailto:") {
				continue
			}

			file, frag := splitLinkTarget(target)
			if file == "" {
				file = f.Filename
			}

			anchors, ok := anchorsByFile[file]
			if !ok {
				warnings = append(warnings, fmt.Sprintf("%s: link to missing file %q", f.Filename, file))
				continue
			}
			if frag != "" && !anchors[frag] {
				warnings = append(warnings, fmt.Sprintf("%s: dangling fragment #%s in link to %s", f.Filename, frag, file))
			}
		}
	}
	return warnings
}

func collectAnchors(md string) map[string]bool {
	ids := make(map[string]bool)
	for _, m := range linkAnchorRe.FindAllStringSubmatch(md, -1) {
		ids[m[1]] = true
	}
	for _, m := range headingIDRe.FindAllStringSubmatch(md, -1) {
		ids[m[1]] = true
	}
	return ids
}

func splitLinkTarget(target string) (file, fragment string) {
	idx := strings.Index(target, "#")
	if idx < 0 {
		return target, ""
	}
	return target[:idx], target[idx+1:]
}
