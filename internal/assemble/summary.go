package assemble

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"epx/epub"
	"epx/internal/sourcetree"
)

// parseSummary reads dir's SUMMARY.md and returns the chapter reading
// order (filenames relative to chapters/) plus the reconstructed
// navigation tree. Grounded on
// original_source/src/assemble/spine_build.rs's parse_summary: list
// nesting depth tracked as the AST is walked, links collected in
// document order, depth fed to sourcetree.BuildNavTree.
func parseSummary(dir string) ([]string, *epub.Navigation, error) {
	path := filepath.Join(dir, "SUMMARY.md")
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading SUMMARY.md: %w", err)
	}

	links := sourcetree.ParseNavLinks(content)

	order := make([]string, 0, len(links))
	for _, l := range links {
		order = append(order, strings.TrimPrefix(l.Href, "chapters/"))
	}

	navNodes := sourcetree.BuildNavTree(links)
	toc := toNavPoints(navNodes)

	return order, &epub.Navigation{Toc: toc}, nil
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
