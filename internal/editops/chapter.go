package editops

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"epx/epub"
	"epx/internal/convert"
	"epx/internal/sourcetree"
)

// AddChapter converts the Markdown file at mdPath to XHTML and inserts it
// into book's resources, manifest, spine, and TOC. When after is
// non-empty it is resolved the same way as RemoveChapter's idOrIndex (a
// spine index or an idref) and the chapter is inserted immediately
// following it; an empty after appends at the end. Grounded on
// original_source/src/manipulate/chapter_manage.rs's add_chapter.
func AddChapter(book *epub.Book, mdPath string, after string, title string) (string, error) {
	raw, err := os.ReadFile(mdPath)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", epub.ErrIO, mdPath, err)
	}
	md := string(raw)

	if title == "" {
		title = chapterTitleFromMarkdown(md, mdPath)
	}

	xhtml, err := convert.MarkdownToXHTML(md, "", title)
	if err != nil {
		return "", fmt.Errorf("converting %s: %w", mdPath, err)
	}

	slug := sourcetree.Slugify(title)
	if slug == "" {
		slug = "chapter"
	}
	id := "chapter-added-" + slug
	href := slug + ".xhtml"

	opfDir := book.OPFDir()
	book.Resources[opfDir+href] = []byte(xhtml)

	book.Package.Manifest.Items = append(book.Package.Manifest.Items, epub.Item{
		ID:        id,
		Href:      href,
		MediaType: "application/xhtml+xml",
	})

	insertPos := -1
	if after != "" {
		pos, _, err := resolveChapter(book, after)
		if err != nil {
			return "", err
		}
		insertPos = pos + 1
	}

	spineItem := epub.ItemRef{IDRef: id}
	spine := &book.Package.Spine.ItemRefs
	if insertPos >= 0 && insertPos <= len(*spine) {
		*spine = append((*spine)[:insertPos:insertPos], append([]epub.ItemRef{spineItem}, (*spine)[insertPos:]...)...)
	} else {
		*spine = append(*spine, spineItem)
	}

	navPoint := &epub.NavPoint{Label: title, Href: href}
	toc := &book.Navigation.Toc
	if insertPos >= 0 && insertPos <= len(*toc) {
		*toc = append((*toc)[:insertPos:insertPos], append([]*epub.NavPoint{navPoint}, (*toc)[insertPos:]...)...)
	} else {
		*toc = append(*toc, navPoint)
	}

	return id, nil
}

// chapterTitleFromMarkdown returns the text of the first level-1 heading,
// falling back to the source file's stem.
func chapterTitleFromMarkdown(md, mdPath string) string {
	for _, line := range strings.Split(md, "\n") {
		if heading, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(heading)
		}
	}
	base := mdPath
	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.TrimSuffix(base, ".md")
}

// RemoveChapter deletes the spine item, manifest entry, resource, and TOC
// entries for idOrIndex (either a spine position or an idref), returning
// the removed idref. Grounded on chapter_manage.rs's remove_chapter.
func RemoveChapter(book *epub.Book, idOrIndex string) (string, error) {
	spineIdx, idref, err := resolveChapter(book, idOrIndex)
	if err != nil {
		return "", err
	}

	var item *epub.Item
	for i := range book.Package.Manifest.Items {
		if book.Package.Manifest.Items[i].ID == idref {
			item = &book.Package.Manifest.Items[i]
			break
		}
	}

	spine := book.Package.Spine.ItemRefs
	book.Package.Spine.ItemRefs = append(spine[:spineIdx:spineIdx], spine[spineIdx+1:]...)

	items := book.Package.Manifest.Items
	filtered := items[:0]
	for _, it := range items {
		if it.ID != idref {
			filtered = append(filtered, it)
		}
	}
	book.Package.Manifest.Items = filtered

	if item != nil {
		opfDir := book.OPFDir()
		delete(book.Resources, opfDir+item.Href)
		delete(book.Resources, item.Href)
		if book.Navigation != nil {
			book.Navigation.Toc = removeFromNav(book.Navigation.Toc, item.Href)
		}
	}

	return idref, nil
}

func removeFromNav(points []*epub.NavPoint, href string) []*epub.NavPoint {
	out := points[:0]
	for _, p := range points {
		if p.Href == href {
			continue
		}
		p.Children = removeFromNav(p.Children, href)
		out = append(out, p)
	}
	return out
}

// ReorderChapter moves the spine item at from to position to. An alias
// of ReorderSpine kept under its own name because it is the counterpart
// chapter_manage.rs names (toc_edit.rs names the identical algorithm
// reorder_spine; this package keeps one implementation for both).
func ReorderChapter(book *epub.Book, from, to int) error {
	return ReorderSpine(book, from, to)
}

// resolveChapter finds the spine index and idref for a spine index or
// idref string, erroring if neither resolves. Grounded on
// chapter_manage.rs's resolve_chapter.
func resolveChapter(book *epub.Book, idOrIndex string) (int, string, error) {
	if idx, err := strconv.Atoi(idOrIndex); err == nil {
		if idx >= 0 && idx < len(book.Package.Spine.ItemRefs) {
			return idx, book.Package.Spine.ItemRefs[idx].IDRef, nil
		}
	}
	for i, item := range book.Package.Spine.ItemRefs {
		if item.IDRef == idOrIndex {
			return i, item.IDRef, nil
		}
	}
	return 0, "", fmt.Errorf("%w: chapter %s", epub.ErrNotFound, idOrIndex)
}
