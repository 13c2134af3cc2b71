package editops

import (
	"strings"
	"testing"

	"epx/epub"
)

func testContentBook() *epub.Book {
	pkg := &epub.Package{
		Manifest: epub.Manifest{
			Items: []epub.Item{
				{ID: "ch1", Href: "ch1.xhtml", MediaType: "application/xhtml+xml"},
				{ID: "ch2", Href: "ch2.xhtml", MediaType: "application/xhtml+xml"},
			},
		},
		Spine: epub.Spine{ItemRefs: []epub.ItemRef{{IDRef: "ch1"}, {IDRef: "ch2"}}},
	}
	resources := map[string][]byte{
		"OEBPS/ch1.xhtml": []byte(`<?xml version="1.0"?><html xmlns="http://www.w3.org/1999/xhtml"><head><title>Ch1</title></head><body><h1>Chapter 1</h1><p>Hello world.</p></body></html>`),
		"OEBPS/ch2.xhtml": []byte(`<?xml version="1.0"?><html xmlns="http://www.w3.org/1999/xhtml"><head><title>Ch2</title></head><body><h1>Chapter 2</h1><p>Goodbye world.</p></body></html>`),
	}
	return &epub.Book{Package: pkg, Navigation: &epub.Navigation{}, Resources: resources, OpfPath: "OEBPS/content.opf"}
}

func TestSearchLiteral(t *testing.T) {
	book := testContentBook()
	matches, err := Search(book, "Hello", "", false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected matches")
	}
	if matches[0].ChapterID != "ch1" {
		t.Fatalf("ChapterID = %q, want ch1", matches[0].ChapterID)
	}
}

func TestSearchRegex(t *testing.T) {
	book := testContentBook()
	matches, err := Search(book, `Hello \w+`, "", true)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected matches")
	}
}

func TestSearchWithChapterFilter(t *testing.T) {
	book := testContentBook()
	matches, err := Search(book, "world", "ch1", false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected matches")
	}
	for _, m := range matches {
		if m.ChapterID != "ch1" {
			t.Fatalf("filter leaked chapter %q", m.ChapterID)
		}
	}
}

func TestSearchNoMatches(t *testing.T) {
	book := testContentBook()
	matches, err := Search(book, "nonexistent_string_xyz", "", false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestReplaceLiteral(t *testing.T) {
	book := testContentBook()
	count, err := Replace(book, "Hello", "Hi", "", false)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if count < 1 {
		t.Fatalf("count = %d, want >= 1", count)
	}
}

func TestReplaceInTextNodesPreservesTags(t *testing.T) {
	re, err := compilePattern("Hello", false)
	if err != nil {
		t.Fatal(err)
	}
	result := replaceInTextNodes(`<p title="Hello">Hello world</p>`, re, "Hi")
	if !strings.Contains(result, `title="Hello"`) || !strings.Contains(result, "Hi world") {
		t.Fatalf("tag attr modified: %s", result)
	}
}

func TestListHeadings(t *testing.T) {
	book := testContentBook()
	headings := ListHeadings(book)
	if len(headings) == 0 {
		t.Fatal("expected headings")
	}
	if headings[0].Level != 1 || headings[0].Text != "Chapter 1" {
		t.Fatalf("headings[0] = %+v", headings[0])
	}
}

func TestRestructureHeadingsValid(t *testing.T) {
	book := testContentBook()
	count, err := RestructureHeadings(book, "h1->h2")
	if err != nil {
		t.Fatalf("RestructureHeadings: %v", err)
	}
	if count < 1 {
		t.Fatalf("count = %d, want >= 1", count)
	}
	content := string(book.Resources["OEBPS/ch1.xhtml"])
	if !strings.Contains(content, "<h2>") {
		t.Fatalf("no h2 found: %s", content)
	}
	if strings.Contains(content, "<h1>") {
		t.Fatalf("h1 still present: %s", content)
	}
}

func TestRestructureHeadingsInvalidMapping(t *testing.T) {
	book := testContentBook()
	if _, err := RestructureHeadings(book, "h1"); err == nil {
		t.Fatal("expected error for malformed mapping")
	}
}
