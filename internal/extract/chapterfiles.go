package extract

import (
	"fmt"
	"strings"

	"epx/epub"
	"epx/internal/sourcetree"
)

// ChapterFile names one spine entry's extracted Markdown destination, per
// spec.md §4.9 step 2.
type ChapterFile struct {
	ZipHref  string // manifest href, as it appears in the OPF (no OPF-dir prefix)
	Filename string // e.g. "00-introduction.md"
}

// ComputeChapterFiles assigns a stable "NN-<slug>.md" filename to every
// spine item whose manifest media type contains "html" or "xml". NN is the
// zero-padded spine index; the slug comes from the matching TOC label when
// one exists, else the href's filename stem. Grounded on
// original_source/src/extract/chapter_org.rs's chapter_filename.
func ComputeChapterFiles(pkg *epub.Package, nav *epub.Navigation) []ChapterFile {
	var files []ChapterFile
	for index, item := range pkg.Spine.ItemRefs {
		manifestItem := findManifestItem(pkg, item.IDRef)
		if manifestItem == nil {
			continue
		}
		mt := manifestItem.MediaType
		if !strings.Contains(mt, "html") && !strings.Contains(mt, "xml") {
			continue
		}
		filename := chapterFilename(index, nav, manifestItem.Href)
		files = append(files, ChapterFile{ZipHref: manifestItem.Href, Filename: filename})
	}
	return files
}

func findManifestItem(pkg *epub.Package, idref string) *epub.Item {
	for i := range pkg.Manifest.Items {
		if pkg.Manifest.Items[i].ID == idref {
			return &pkg.Manifest.Items[i]
		}
	}
	return nil
}

func chapterFilename(index int, nav *epub.Navigation, href string) string {
	var baseName string
	if nav != nil {
		if label, ok := findTOCLabel(nav.Toc, href); ok {
			baseName = sourcetree.Slugify(label)
		}
	}
	if baseName == "" {
		fname := href
		if idx := strings.LastIndex(fname, "/"); idx >= 0 {
			fname = fname[idx+1:]
		}
		stem := fname
		if idx := strings.LastIndex(fname, "."); idx >= 0 {
			stem = fname[:idx]
		}
		baseName = sourcetree.Slugify(stem)
	}
	if baseName == "" {
		baseName = fmt.Sprintf("chapter-%d", index)
	}
	return fmt.Sprintf("%02d-%s.md", index, baseName)
}

// findTOCLabel walks the nav tree for an entry whose href (ignoring
// fragment) matches target (ignoring fragment) exactly, or where target
// ends with the entry's href — a suffix match for when the TOC href is
// relative to a different directory than the spine href.
func findTOCLabel(points []*epub.NavPoint, target string) (string, bool) {
	targetHref := stripFragment(target)
	for _, p := range points {
		pointHref := stripFragment(p.Href)
		if pointHref == targetHref || strings.HasSuffix(targetHref, pointHref) {
			return p.Label, true
		}
		if label, ok := findTOCLabel(p.Children, target); ok {
			return label, true
		}
	}
	return "", false
}

func stripFragment(href string) string {
	if idx := strings.Index(href, "#"); idx >= 0 {
		return href[:idx]
	}
	return href
}
