// Package assemble implements the inverse of internal/extract: it
// reassembles the Markdown/YAML source tree produced by extraction back
// into a Book ready for serialization.
package assemble

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"go.abhg.dev/goldmark/frontmatter"

	"epx/epub"
	"epx/internal/convert"
	"epx/internal/sourcetree"
)

// Assemble reads a source tree rooted at dir and builds a Book from it.
func Assemble(dir string) (*epub.Book, error) {
	meta, customMeta, err := readMetadata(dir)
	if err != nil {
		return nil, fmt.Errorf("reading metadata.yml: %w", err)
	}

	chapterOrder, nav, err := parseSummary(dir)
	if err != nil {
		return nil, err
	}

	const opfDir = "OEBPS/"

	resources := make(map[string][]byte)
	var manifestItems []epub.Item
	var spineItems []epub.ItemRef

	stylesheetHref, err := embedStylesheets(dir, opfDir, resources, &manifestItems)
	if err != nil {
		return nil, err
	}

	seenIDs := make(map[string]bool)
	chaptersDir := filepath.Join(dir, "chapters")
	for index, chapterFile := range chapterOrder {
		chapterPath := filepath.Join(chaptersDir, chapterFile)
		raw, err := os.ReadFile(chapterPath)
		if err != nil {
			return nil, fmt.Errorf("reading chapter %s: %w", chapterFile, err)
		}

		fm, body, err := parseChapterFrontmatter(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing frontmatter for %s: %w", chapterFile, err)
		}
		title := extractTitle(body, chapterFile)

		xhtml, err := convert.MarkdownToXHTML(body, stylesheetHref, title)
		if err != nil {
			return nil, fmt.Errorf("converting chapter %s: %w", chapterFile, err)
		}

		xhtmlName := strings.TrimSuffix(chapterFile, ".md")
		xhtmlHref := xhtmlName + ".xhtml"
		itemID := fm.OriginalID
		if itemID == "" || seenIDs[itemID] {
			itemID = fmt.Sprintf("chapter-%02d", index)
		}
		seenIDs[itemID] = true

		resources[opfDir+xhtmlHref] = []byte(xhtml)
		manifestItems = append(manifestItems, epub.Item{
			ID:        itemID,
			Href:      xhtmlHref,
			MediaType: "application/xhtml+xml",
		})
		spineItems = append(spineItems, epub.ItemRef{IDRef: itemID})
	}

	assetsDir := filepath.Join(dir, "assets")
	if info, err := os.Stat(assetsDir); err == nil && info.IsDir() {
		if err := addAssetsRecursive(assetsDir, opfDir, "assets", resources, &manifestItems); err != nil {
			return nil, err
		}
	}

	pkg := &epub.Package{
		Version:  "3.0",
		Metadata: meta,
		Manifest: epub.Manifest{Items: manifestItems},
		Spine:    epub.Spine{ItemRefs: spineItems},
	}
	for property, value := range customMeta {
		pkg.SetCustom(property, value)
	}

	return &epub.Book{
		Package:    pkg,
		Navigation: nav,
		Resources:  resources,
		OpfPath:    opfDir + "content.opf",
	}, nil
}

// Package writes dir's source tree directly to outputPath as an EPUB.
func Package(dir, outputPath string) error {
	book, err := Assemble(dir)
	if err != nil {
		return err
	}
	return epub.WriteNewEPUB(book, outputPath)
}

func readMetadata(dir string) (epub.Metadata, map[string]string, error) {
	path := filepath.Join(dir, "metadata.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		return epub.Metadata{}, nil, err
	}
	m, err := sourcetree.ParseBookMetadata(data)
	if err != nil {
		return epub.Metadata{}, nil, fmt.Errorf("parsing metadata.yml: %w", err)
	}

	meta := epub.Metadata{
		Creators:     toAuthorMeta(m.Creators),
		Subjects:     toSimpleMeta(m.Subjects),
		Descriptions: toSimpleMeta(nonEmpty(m.Description)),
		Publishers:   toSimpleMeta(m.Publishers),
		Dates:        toSimpleMeta(m.Dates),
		Identifiers:  toIDMeta(m.Identifiers),
		Languages:    toSimpleMeta(m.Languages),
		Rights:       toSimpleMeta(nonEmpty(m.Rights)),
	}
	if m.Title != "" {
		meta.Titles = []epub.SimpleMeta{{Value: m.Title}}
	}
	return meta, m.Custom, nil
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func toSimpleMeta(values []string) []epub.SimpleMeta {
	if len(values) == 0 {
		return nil
	}
	out := make([]epub.SimpleMeta, len(values))
	for i, v := range values {
		out[i] = epub.SimpleMeta{Value: v}
	}
	return out
}

func toAuthorMeta(values []string) []epub.AuthorMeta {
	if len(values) == 0 {
		return nil
	}
	out := make([]epub.AuthorMeta, len(values))
	for i, v := range values {
		out[i] = epub.AuthorMeta{SimpleMeta: epub.SimpleMeta{Value: v}}
	}
	return out
}

func toIDMeta(values []string) []epub.IDMeta {
	if len(values) == 0 {
		return nil
	}
	out := make([]epub.IDMeta, len(values))
	for i, v := range values {
		out[i] = epub.IDMeta{Value: v}
	}
	return out
}

// parseChapterFrontmatter decodes the "---\n...\n---\n" YAML block written
// by extraction (original_file/original_id/spine_index, §6.2) via the
// goldmark frontmatter extension (go.abhg.dev/goldmark/frontmatter), and
// returns it alongside the chapter body with the block
// removed. A chapter with no frontmatter block decodes to a zero-value
// ChapterFrontmatter.
func parseChapterFrontmatter(raw []byte) (sourcetree.ChapterFrontmatter, string, error) {
	var fm sourcetree.ChapterFrontmatter
	if !bytes.HasPrefix(raw, []byte("---")) {
		return fm, string(raw), nil
	}

	md := goldmark.New(goldmark.WithExtensions(&frontmatter.Extender{}))
	ctx := parser.NewContext()
	var discard bytes.Buffer
	if err := md.Convert(raw, &discard, parser.WithContext(ctx)); err != nil {
		return fm, "", err
	}
	if d := frontmatter.Get(ctx); d != nil {
		if err := d.Decode(&fm); err != nil {
			return fm, "", err
		}
	}
	return fm, stripFrontmatter(string(raw)), nil
}

// stripFrontmatter removes a leading "---\n...\n---\n" YAML block, if
// present.
func stripFrontmatter(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}
	rest := content[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return content
	}
	after := end + 3 + 4
	if after >= len(content) {
		return content
	}
	return strings.TrimLeft(content[after:], "\n")
}

// extractTitle derives a chapter title from its first level-1 heading,
// falling back to a de-hyphenated filename stem.
func extractTitle(md, filename string) string {
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if heading, ok := strings.CutPrefix(trimmed, "# "); ok {
			return strings.TrimSpace(heading)
		}
	}
	stem := strings.TrimSuffix(filename, ".md")
	return strings.TrimSpace(strings.ReplaceAll(stem, "-", " "))
}
