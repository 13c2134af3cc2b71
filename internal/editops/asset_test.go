package editops

import (
	"os"
	"path/filepath"
	"testing"

	"epx/epub"
)

func testAssetBook() *epub.Book {
	pkg := &epub.Package{
		Manifest: epub.Manifest{
			Items: []epub.Item{
				{ID: "ch1", Href: "ch1.xhtml", MediaType: "application/xhtml+xml"},
			},
		},
		Spine: epub.Spine{ItemRefs: []epub.ItemRef{{IDRef: "ch1"}}},
	}
	resources := map[string][]byte{
		"OEBPS/ch1.xhtml": []byte(`<html><body><p>Content with <img src="test.png"/> image</p></body></html>`),
	}
	return &epub.Book{Package: pkg, Navigation: &epub.Navigation{}, Resources: resources, OpfPath: "OEBPS/content.opf"}
}

func TestAddAssetInferredType(t *testing.T) {
	book := testAssetBook()
	assetPath := filepath.Join(t.TempDir(), "cover.png")
	os.WriteFile(assetPath, []byte("fake png data"), 0o644)

	id, err := AddAsset(book, assetPath, "")
	if err != nil {
		t.Fatalf("AddAsset: %v", err)
	}
	item := manifestItemByID(book, id)
	if item == nil || item.MediaType != "image/png" {
		t.Fatalf("item = %+v, want media type image/png", item)
	}
}

func TestAddAssetExplicitType(t *testing.T) {
	book := testAssetBook()
	assetPath := filepath.Join(t.TempDir(), "data.bin")
	os.WriteFile(assetPath, []byte("binary data"), 0o644)

	id, err := AddAsset(book, assetPath, "application/x-custom")
	if err != nil {
		t.Fatalf("AddAsset: %v", err)
	}
	item := manifestItemByID(book, id)
	if item == nil || item.MediaType != "application/x-custom" {
		t.Fatalf("item = %+v, want media type application/x-custom", item)
	}
}

func TestRemoveAssetExisting(t *testing.T) {
	book := testAssetBook()
	assetPath := filepath.Join(t.TempDir(), "test.css")
	os.WriteFile(assetPath, []byte("body {}"), 0o644)

	id, err := AddAsset(book, assetPath, "")
	if err != nil {
		t.Fatalf("AddAsset: %v", err)
	}
	before := len(book.Package.Manifest.Items)
	item := manifestItemByID(book, id)

	if err := RemoveAsset(book, item.Href); err != nil {
		t.Fatalf("RemoveAsset: %v", err)
	}
	if len(book.Package.Manifest.Items) != before-1 {
		t.Fatalf("manifest length = %d, want %d", len(book.Package.Manifest.Items), before-1)
	}
}

func TestRemoveAssetNotFound(t *testing.T) {
	book := testAssetBook()
	if err := RemoveAsset(book, "nonexistent.png"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRemoveAssetStillReferenced(t *testing.T) {
	book := testAssetBook()
	assetPath := filepath.Join(t.TempDir(), "test.png")
	os.WriteFile(assetPath, []byte("png data"), 0o644)

	if _, err := AddAsset(book, assetPath, ""); err != nil {
		t.Fatalf("AddAsset: %v", err)
	}
	if err := RemoveAsset(book, "test.png"); err != nil {
		t.Fatalf("RemoveAsset should warn, not error: %v", err)
	}
}

func TestSetCoverInferredType(t *testing.T) {
	book := testAssetBook()
	imagePath := filepath.Join(t.TempDir(), "cover.png")
	os.WriteFile(imagePath, []byte("png data"), 0o644)

	if err := SetCover(book, imagePath, ""); err != nil {
		t.Fatalf("SetCover: %v", err)
	}

	data, href, mediaType, err := book.CoverImage()
	if err != nil {
		t.Fatalf("CoverImage: %v", err)
	}
	if string(data) != "png data" || href != "cover.png" || mediaType != "image/png" {
		t.Errorf("got (%q, %q, %q)", data, href, mediaType)
	}
}

func TestSetCoverRejectsNonImage(t *testing.T) {
	book := testAssetBook()
	filePath := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(filePath, []byte("text data"), 0o644)

	if err := SetCover(book, filePath, ""); err == nil {
		t.Fatal("expected error for non-image media type")
	}
}
