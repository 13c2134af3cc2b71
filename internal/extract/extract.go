// Package extract implements the extraction pipeline of spec.md §4.9: it
// projects a Book model onto the opinionated Markdown/YAML source tree.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"epx/epub"
	"epx/internal/convert"
	"epx/internal/pathmap"
	"epx/internal/refs"
	"epx/internal/sourcetree"
)

// Options controls optional extraction behavior.
type Options struct {
	// IncludeProfile computes and records a structural Profile under
	// metadata.yml's epx sub-map.
	IncludeProfile bool
}

// Result reports the outcome of an extraction, including any non-fatal
// link-validation warnings (spec.md §4.9 step 9, §4.13: warnings only).
type Result struct {
	ChapterFiles []ChapterFile
	Warnings     []string
}

// Extract projects book onto destDir's source tree: metadata.yml,
// SUMMARY.md, chapters/, styles/, assets/images/, assets/fonts/. It
// implements spec.md §4.9's two-pass pipeline.
func Extract(book *epub.Book, destDir string, opts Options) (*Result, error) {
	opfDir := book.OPFDir()

	chapterFiles := ComputeChapterFiles(book.Package, book.Navigation)

	spineDocs := collectSpineDocuments(book)
	referencedIDs := refs.Collect(spineDocs)

	images, styles, fonts := classifyAssets(book.Package)

	pmChapters := make([]pathmap.ChapterFile, len(chapterFiles))
	for i, cf := range chapterFiles {
		pmChapters[i] = pathmap.ChapterFile{ZipHref: cf.ZipHref, Filename: cf.Filename}
	}
	pm := pathmap.Build(opfDir, pmChapters, images, styles, fonts)

	if err := os.MkdirAll(filepath.Join(destDir, "chapters"), 0o755); err != nil {
		return nil, fmt.Errorf("creating chapters dir: %w", err)
	}

	chapterMarkdown, err := transformChapters(book, chapterFiles, pm, referencedIDs, destDir)
	if err != nil {
		return nil, err
	}

	if err := writeMetadataYAML(book, destDir, opts); err != nil {
		return nil, err
	}

	summary := GenerateSummary(book.Navigation.Toc, chapterFiles)
	if err := os.WriteFile(filepath.Join(destDir, "SUMMARY.md"), []byte(summary), 0o644); err != nil {
		return nil, fmt.Errorf("writing SUMMARY.md: %w", err)
	}

	if err := extractAssets(book, destDir, images, styles, fonts); err != nil {
		return nil, err
	}

	warnings := validateLinks(chapterFiles, chapterMarkdown)

	return &Result{ChapterFiles: chapterFiles, Warnings: warnings}, nil
}

func collectSpineDocuments(book *epub.Book) [][]byte {
	var docs [][]byte
	for _, item := range book.Package.Spine.ItemRefs {
		manifestItem := findManifestItem(book.Package, item.IDRef)
		if manifestItem == nil {
			continue
		}
		if data, ok := book.Resource(manifestItem.Href); ok {
			docs = append(docs, data)
		}
	}
	return docs
}

func classifyAssets(pkg *epub.Package) (images, styles, fonts []string) {
	for _, item := range pkg.Manifest.Items {
		switch {
		case isImageMediaType(item.MediaType):
			images = append(images, item.Href)
		case item.MediaType == "text/css":
			styles = append(styles, item.Href)
		case isFontMediaType(item.MediaType):
			fonts = append(fonts, item.Href)
		}
	}
	return images, styles, fonts
}

func isImageMediaType(mt string) bool {
	switch mt {
	case "image/jpeg", "image/png", "image/gif", "image/svg+xml", "image/webp", "image/bmp":
		return true
	}
	return false
}

func isFontMediaType(mt string) bool {
	switch mt {
	case "font/ttf", "font/otf", "font/woff", "font/woff2",
		"application/font-sfnt", "application/vnd.ms-opentype", "application/x-font-ttf":
		return true
	}
	return false
}

// transformJob is one unit of per-chapter XHTML-to-Markdown work.
type transformJob struct {
	index int
	file  ChapterFile
	spine int
}

type transformOutcome struct {
	markdown string
	err      error
}

// transformChapters runs every chapter's transform concurrently over a
// bounded worker pool. Each transform is pure over (xhtml, pathMap,
// referencedIDs), so results are collected into an indexed slice rather
// than appended under a mutex, keeping output order deterministic
// regardless of completion order.
func transformChapters(book *epub.Book, files []ChapterFile, pm pathmap.Map, referencedIDs map[string]bool, destDir string) ([]string, error) {
	jobs := make(chan transformJob, len(files))
	outcomes := make([]transformOutcome, len(files))

	workers := runtime.NumCPU()
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				data, ok := book.Resource(job.file.ZipHref)
				if !ok {
					outcomes[job.index] = transformOutcome{err: fmt.Errorf("%w: chapter resource %s", epub.ErrNotFound, job.file.ZipHref)}
					continue
				}
				md, err := convert.HTMLToMarkdown(string(data), pm, referencedIDs)
				if err != nil {
					outcomes[job.index] = transformOutcome{err: fmt.Errorf("converting %s: %w", job.file.ZipHref, err)}
					continue
				}
				outcomes[job.index] = transformOutcome{markdown: md}
			}
		}()
	}

	for i, f := range files {
		spineIdx := spineIndexOf(book.Package, f.ZipHref)
		jobs <- transformJob{index: i, file: f, spine: spineIdx}
	}
	close(jobs)
	wg.Wait()

	markdown := make([]string, len(files))
	for i, f := range files {
		if outcomes[i].err != nil {
			return nil, outcomes[i].err
		}
		markdown[i] = outcomes[i].markdown

		spineIdx := spineIndexOf(book.Package, f.ZipHref)
		manifestItem := manifestItemForHref(book.Package, f.ZipHref)
		originalID := ""
		if manifestItem != nil {
			originalID = manifestItem.ID
		}
		fm := sourcetree.ChapterFrontmatter{
			OriginalFile: f.ZipHref,
			OriginalID:   originalID,
			SpineIndex:   spineIdx,
		}
		header, err := fm.ToYAMLHeader()
		if err != nil {
			return nil, fmt.Errorf("rendering frontmatter for %s: %w", f.Filename, err)
		}
		full := append(header, []byte(markdown[i])...)
		if err := os.WriteFile(filepath.Join(destDir, "chapters", f.Filename), full, 0o644); err != nil {
			return nil, fmt.Errorf("writing chapter %s: %w", f.Filename, err)
		}
	}

	return markdown, nil
}

func spineIndexOf(pkg *epub.Package, zipHref string) int {
	for i, item := range pkg.Spine.ItemRefs {
		if mi := findManifestItem(pkg, item.IDRef); mi != nil && mi.Href == zipHref {
			return i
		}
	}
	return -1
}

func manifestItemForHref(pkg *epub.Package, href string) *epub.Item {
	for i := range pkg.Manifest.Items {
		if pkg.Manifest.Items[i].Href == href {
			return &pkg.Manifest.Items[i]
		}
	}
	return nil
}

func writeMetadataYAML(book *epub.Book, destDir string, opts Options) error {
	pkg := book.Package
	epxVersion := "2.0"
	if pkg.Version != "" {
		epxVersion = pkg.Version
	}

	epx := map[string]string{
		"source_format": "epub",
		"epub_version":  epxVersion,
		"extracted_date": extractedDate(),
	}

	if opts.IncludeProfile {
		p := Analyze(book)
		epx["profile_genre"] = string(p.Genre)
		epx["profile_spine_count"] = fmt.Sprint(p.SpineCount)
		epx["profile_image_count"] = fmt.Sprint(p.ImageCount)
		epx["profile_cross_reference_count"] = fmt.Sprint(p.CrossReferenceCount)
		epx["profile_has_image_gallery"] = fmt.Sprint(p.HasImageGallery)
		epx["profile_has_svg_cover"] = fmt.Sprint(p.HasSVGCover)
		epx["profile_empty_alt_count"] = fmt.Sprint(p.EmptyAltCount)
	}

	m := &sourcetree.BookMetadata{
		Title:       pkg.GetTitle(),
		Creators:    authorValues(pkg.Metadata.Creators),
		Identifiers: idValues(pkg.Metadata.Identifiers),
		Languages:   simpleValues(pkg.Metadata.Languages),
		Publishers:  simpleValues(pkg.Metadata.Publishers),
		Dates:       simpleValues(pkg.Metadata.Dates),
		Description: pkg.GetDescription(),
		Subjects:    pkg.GetSubjects(),
		Rights:      firstSimpleValue(pkg.Metadata.Rights),
		Custom:      pkg.GetCustom(),
		Epx:         epx,
	}

	data, err := m.ToYAML()
	if err != nil {
		return fmt.Errorf("marshaling metadata.yml: %w", err)
	}
	if err := os.WriteFile(filepath.Join(destDir, "metadata.yml"), data, 0o644); err != nil {
		return fmt.Errorf("writing metadata.yml: %w", err)
	}
	return nil
}

func simpleValues(meta []epub.SimpleMeta) []string {
	values := make([]string, 0, len(meta))
	for _, m := range meta {
		values = append(values, m.Value)
	}
	return values
}

func firstSimpleValue(meta []epub.SimpleMeta) string {
	if len(meta) == 0 {
		return ""
	}
	return meta[0].Value
}

func authorValues(meta []epub.AuthorMeta) []string {
	values := make([]string, 0, len(meta))
	for _, m := range meta {
		values = append(values, m.Value)
	}
	return values
}

func idValues(meta []epub.IDMeta) []string {
	values := make([]string, 0, len(meta))
	for _, m := range meta {
		values = append(values, m.Value)
	}
	return values
}

func extractedDate() string {
	return time.Now().UTC().Format("2006-01-02")
}

func extractAssets(book *epub.Book, destDir string, images, styles, fonts []string) error {
	if err := extractAssetGroup(book, destDir, "assets/images", images); err != nil {
		return err
	}
	if err := extractAssetGroup(book, destDir, "styles", styles); err != nil {
		return err
	}
	if err := extractAssetGroup(book, destDir, "assets/fonts", fonts); err != nil {
		return err
	}
	return nil
}

func extractAssetGroup(book *epub.Book, destDir, subdir string, hrefs []string) error {
	if len(hrefs) == 0 {
		return nil
	}
	dir := filepath.Join(destDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", subdir, err)
	}
	for _, href := range hrefs {
		data, ok := book.Resource(href)
		if !ok {
			continue
		}
		base := href
		if idx := lastSlash(base); idx >= 0 {
			base = base[idx+1:]
		}
		if err := os.WriteFile(filepath.Join(dir, base), data, 0o644); err != nil {
			return fmt.Errorf("writing asset %s: %w", base, err)
		}
	}
	return nil
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}
