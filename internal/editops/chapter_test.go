package editops

import (
	"os"
	"path/filepath"
	"testing"

	"epx/epub"
)

func testChapterBook() *epub.Book {
	pkg := &epub.Package{
		Version: "3.0",
		Metadata: epub.Metadata{
			Titles:      []epub.SimpleMeta{{Value: "Test"}},
			Identifiers: []epub.IDMeta{{Value: "urn:uuid:test"}},
			Languages:   []epub.SimpleMeta{{Value: "en"}},
		},
		Manifest: epub.Manifest{
			Items: []epub.Item{
				{ID: "ch1", Href: "ch1.xhtml", MediaType: "application/xhtml+xml"},
				{ID: "ch2", Href: "ch2.xhtml", MediaType: "application/xhtml+xml"},
			},
		},
		Spine: epub.Spine{
			ItemRefs: []epub.ItemRef{{IDRef: "ch1"}, {IDRef: "ch2"}},
		},
	}
	nav := &epub.Navigation{
		Toc: []*epub.NavPoint{
			{Label: "Chapter 1", Href: "ch1.xhtml"},
			{Label: "Chapter 2", Href: "ch2.xhtml"},
		},
	}
	resources := map[string][]byte{
		"OEBPS/ch1.xhtml": []byte("<html><body><h1>Ch1</h1><p>Hello</p></body></html>"),
		"OEBPS/ch2.xhtml": []byte("<html><body><h1>Ch2</h1><p>Goodbye</p></body></html>"),
	}
	return &epub.Book{Package: pkg, Navigation: nav, Resources: resources, OpfPath: "OEBPS/content.opf"}
}

func TestAddChapterAtEnd(t *testing.T) {
	book := testChapterBook()
	mdPath := filepath.Join(t.TempDir(), "new.md")
	if err := os.WriteFile(mdPath, []byte("# New Chapter\n\nContent here.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	id, err := AddChapter(book, mdPath, "", "")
	if err != nil {
		t.Fatalf("AddChapter: %v", err)
	}
	if len(book.Package.Spine.ItemRefs) != 3 {
		t.Fatalf("spine length = %d, want 3", len(book.Package.Spine.ItemRefs))
	}
	if book.Package.Spine.ItemRefs[2].IDRef != id {
		t.Fatalf("last spine idref = %q, want %q", book.Package.Spine.ItemRefs[2].IDRef, id)
	}
	if len(book.Navigation.Toc) != 3 {
		t.Fatalf("toc length = %d, want 3", len(book.Navigation.Toc))
	}
}

func TestAddChapterWithExplicitTitle(t *testing.T) {
	book := testChapterBook()
	mdPath := filepath.Join(t.TempDir(), "new.md")
	if err := os.WriteFile(mdPath, []byte("Some content without heading.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	id, err := AddChapter(book, mdPath, "", "Custom Title")
	if err != nil {
		t.Fatalf("AddChapter: %v", err)
	}
	if id != "chapter-added-custom-title" {
		t.Fatalf("id = %q, want chapter-added-custom-title", id)
	}
}

func TestAddChapterAfterAnchor(t *testing.T) {
	book := testChapterBook()
	mdPath := filepath.Join(t.TempDir(), "new.md")
	os.WriteFile(mdPath, []byte("# Inserted\n\nBody.\n"), 0o644)

	if _, err := AddChapter(book, mdPath, "ch1", ""); err != nil {
		t.Fatalf("AddChapter: %v", err)
	}
	if book.Package.Spine.ItemRefs[1].IDRef != "chapter-added-inserted" {
		t.Fatalf("spine[1] = %q, want chapter-added-inserted", book.Package.Spine.ItemRefs[1].IDRef)
	}
	if book.Navigation.Toc[1].Label != "Inserted" {
		t.Fatalf("toc[1].Label = %q, want Inserted", book.Navigation.Toc[1].Label)
	}
}

func TestRemoveChapterByIndex(t *testing.T) {
	book := testChapterBook()
	removed, err := RemoveChapter(book, "0")
	if err != nil {
		t.Fatalf("RemoveChapter: %v", err)
	}
	if removed != "ch1" {
		t.Fatalf("removed = %q, want ch1", removed)
	}
	if len(book.Package.Spine.ItemRefs) != 1 {
		t.Fatalf("spine length = %d, want 1", len(book.Package.Spine.ItemRefs))
	}
	if len(book.Navigation.Toc) != 1 || book.Navigation.Toc[0].Href != "ch2.xhtml" {
		t.Fatalf("toc = %+v, want only ch2 entry", book.Navigation.Toc)
	}
}

func TestRemoveChapterByID(t *testing.T) {
	book := testChapterBook()
	removed, err := RemoveChapter(book, "ch1")
	if err != nil {
		t.Fatalf("RemoveChapter: %v", err)
	}
	if removed != "ch1" {
		t.Fatalf("removed = %q, want ch1", removed)
	}
	for _, item := range book.Package.Manifest.Items {
		if item.ID == "ch1" {
			t.Fatal("ch1 still present in manifest")
		}
	}
	if _, ok := book.Resources["OEBPS/ch1.xhtml"]; ok {
		t.Fatal("ch1 resource still present")
	}
}

func TestRemoveChapterNotFound(t *testing.T) {
	book := testChapterBook()
	if _, err := RemoveChapter(book, "nonexistent"); err == nil {
		t.Fatal("expected error for nonexistent chapter")
	}
}

func TestReorderChapterOutOfBounds(t *testing.T) {
	book := testChapterBook()
	if err := ReorderChapter(book, 99, 0); err == nil {
		t.Fatal("expected error for out-of-bounds reorder")
	}
}

func TestReorderChapterValid(t *testing.T) {
	book := testChapterBook()
	if err := ReorderChapter(book, 0, 1); err != nil {
		t.Fatalf("ReorderChapter: %v", err)
	}
	if book.Package.Spine.ItemRefs[0].IDRef != "ch2" {
		t.Fatalf("spine[0] = %q, want ch2", book.Package.Spine.ItemRefs[0].IDRef)
	}
}
