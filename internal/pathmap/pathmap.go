// Package pathmap builds the bidirectional mapping between ZIP-relative
// EPUB hrefs and the paths of the extracted Markdown/assets tree, used by
// the XHTML-to-Markdown transform for string-based path rewriting.
package pathmap

import "strings"

// ChapterFile names one spine entry's extracted Markdown filename,
// relative to chapters/ (e.g. "00-introduction.md").
type ChapterFile struct {
	ZipHref  string
	Filename string
}

// Map is the set of string replacements to apply against a chapter's raw
// XHTML: every key is a path as it appears in an href/src attribute (or a
// full ZIP path, or href relative to some other chapter's directory), and
// every value is the replacement target relative to chapters/.
type Map map[string]string

// Build computes Map for a set of chapter files and other manifest items
// (images, stylesheets, fonts), per spec.md §4.7.
//
//   - Images map to "../assets/images/<basename>".
//   - CSS maps to "../styles/<basename>".
//   - Fonts map to "../assets/fonts/<basename>".
//   - Chapters map to their sibling ".md" filename.
//
// For every (zipPath, target) pair, three keys are inserted: the bare
// manifest href, the full ZIP path, and the relative path from each XHTML
// directory to the ZIP path, since XHTML references resources using
// paths relative to the referencing document's own directory.
func Build(opfDir string, chapters []ChapterFile, images, styles, fonts []string) Map {
	m := make(Map)

	xhtmlDirs := chapterDirs(opfDir, chapters)

	for _, ch := range chapters {
		zipPath := join(opfDir, ch.ZipHref)
		insert(m, xhtmlDirs, ch.ZipHref, zipPath, ch.Filename)
	}
	for _, href := range images {
		zipPath := join(opfDir, href)
		target := "../assets/images/" + basename(href)
		insert(m, xhtmlDirs, href, zipPath, target)
	}
	for _, href := range styles {
		zipPath := join(opfDir, href)
		target := "../styles/" + basename(href)
		insert(m, xhtmlDirs, href, zipPath, target)
	}
	for _, href := range fonts {
		zipPath := join(opfDir, href)
		target := "../assets/fonts/" + basename(href)
		insert(m, xhtmlDirs, href, zipPath, target)
	}

	return m
}

func insert(m Map, xhtmlDirs []string, href, zipPath, target string) {
	m[href] = target
	m[zipPath] = target
	for _, dir := range xhtmlDirs {
		m[RelativePath(dir, zipPath)] = target
	}
}

// chapterDirs returns the set of unique ZIP directories containing a
// spine chapter, derived from each chapter's ZIP path.
func chapterDirs(opfDir string, chapters []ChapterFile) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, ch := range chapters {
		d := dirOf(join(opfDir, ch.ZipHref))
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// RelativePath computes the relative path from a ZIP directory ("" or
// ending in "/") to a ZIP file path, by stripping the common prefix and
// emitting "../" for each remaining segment of from.
//
// RelativePath(from, join(from, rel)) == rel for any rel with no leading
// "/", which is the invariant exercised in pathmap_test.go.
func RelativePath(from, to string) string {
	fromSegs := splitNonEmpty(from)
	toSegs := splitNonEmpty(to)

	i := 0
	for i < len(fromSegs) && i < len(toSegs)-1 && fromSegs[i] == toSegs[i] {
		i++
	}

	var parts []string
	for j := i; j < len(fromSegs); j++ {
		parts = append(parts, "..")
	}
	parts = append(parts, toSegs[i:]...)

	return strings.Join(parts, "/")
}

func splitNonEmpty(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func join(dir, rel string) string {
	if dir == "" {
		return rel
	}
	return strings.TrimSuffix(dir, "/") + "/" + rel
}

func dirOf(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return ""
	}
	return p[:idx+1]
}

func basename(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}
