package editops

import (
	"strconv"

	"epx/epub"
	"epx/internal/sourcetree"
)

// SetTOCFromMarkdown replaces book's table of contents with the tree
// described by a Markdown list in the same shape SUMMARY.md uses (see
// internal/assemble's parser, which this shares via
// sourcetree.ParseNavLinks). Grounded on
// original_source/src/manipulate/toc_edit.rs's set_toc_from_markdown.
func SetTOCFromMarkdown(book *epub.Book, tocMarkdown string) error {
	links := sourcetree.ParseNavLinks([]byte(tocMarkdown))
	nodes := sourcetree.BuildNavTree(links)
	book.Navigation.Toc = toNavPoints(nodes)
	return nil
}

func toNavPoints(nodes []*sourcetree.NavNode) []*epub.NavPoint {
	points := make([]*epub.NavPoint, 0, len(nodes))
	for _, n := range nodes {
		points = append(points, &epub.NavPoint{
			Label:    n.Label,
			Href:     n.Href,
			Children: toNavPoints(n.Children),
		})
	}
	return points
}

// GenerateTOC rebuilds the table of contents from the <h1>-<hN> headings
// found in spine XHTML, in spine order, flattened (no nesting by
// level — matching the original's behavior of one NavPoint per heading
// regardless of depth). maxDepth limits which heading levels are
// collected; 0 defaults to 3. Grounded on toc_edit.rs's generate_toc.
func GenerateTOC(book *epub.Book, maxDepth int) error {
	if maxDepth <= 0 {
		maxDepth = 3
	}

	var toc []*epub.NavPoint
	for _, doc := range spineDocuments(book) {
		for _, match := range headingRe.FindAllStringSubmatch(doc.xhtml, -1) {
			level, _ := strconv.Atoi(match[1])
			if level > maxDepth {
				continue
			}
			text := stripHTMLTags(match[2])
			if text == "" {
				continue
			}
			toc = append(toc, &epub.NavPoint{Label: text, Href: doc.item.Href})
		}
	}

	book.Navigation.Toc = toc
	return nil
}
