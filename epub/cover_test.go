package epub

import (
	"errors"
	"testing"
)

func testCoverBook() *Book {
	pkg := &Package{
		Manifest: Manifest{
			Items: []Item{
				{ID: "ch1", Href: "ch1.xhtml", MediaType: "application/xhtml+xml"},
			},
		},
	}
	return &Book{
		Package:   pkg,
		Resources: map[string][]byte{"OEBPS/ch1.xhtml": []byte("<html></html>")},
		OpfPath:   "OEBPS/content.opf",
	}
}

func TestCoverImageEPUB2MetaPointer(t *testing.T) {
	book := testCoverBook()
	book.Package.Metadata.Meta = []Meta{{Name: "cover", Content: "cover-img"}}
	book.Package.Manifest.Items = append(book.Package.Manifest.Items, Item{
		ID: "cover-img", Href: "images/cover.jpg", MediaType: "image/jpeg",
	})
	book.Resources["OEBPS/images/cover.jpg"] = []byte("jpegdata")

	data, href, mediaType, err := book.CoverImage()
	if err != nil {
		t.Fatalf("CoverImage: %v", err)
	}
	if string(data) != "jpegdata" || href != "images/cover.jpg" || mediaType != "image/jpeg" {
		t.Errorf("got (%q, %q, %q)", data, href, mediaType)
	}
}

func TestCoverImageEPUB3Property(t *testing.T) {
	book := testCoverBook()
	book.Package.Manifest.Items = append(book.Package.Manifest.Items, Item{
		ID: "img-1", Href: "images/cover.png", MediaType: "image/png", Properties: "cover-image",
	})
	book.Resources["OEBPS/images/cover.png"] = []byte("pngdata")

	data, href, mediaType, err := book.CoverImage()
	if err != nil {
		t.Fatalf("CoverImage: %v", err)
	}
	if string(data) != "pngdata" || href != "images/cover.png" || mediaType != "image/png" {
		t.Errorf("got (%q, %q, %q)", data, href, mediaType)
	}
}

func TestCoverImageConventionalIDFallback(t *testing.T) {
	book := testCoverBook()
	book.Package.Manifest.Items = append(book.Package.Manifest.Items, Item{
		ID: "cover", Href: "cover.jpg", MediaType: "image/jpeg",
	})
	book.Resources["OEBPS/cover.jpg"] = []byte("fallbackdata")

	_, href, _, err := book.CoverImage()
	if err != nil {
		t.Fatalf("CoverImage: %v", err)
	}
	if href != "cover.jpg" {
		t.Errorf("href = %q, want cover.jpg", href)
	}
}

func TestCoverImageNotFound(t *testing.T) {
	book := testCoverBook()
	_, _, _, err := book.CoverImage()
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSetCoverAddsNewManifestItemAndMeta(t *testing.T) {
	book := testCoverBook()
	book.SetCover([]byte("imgbytes"), "image/png")

	data, href, mediaType, err := book.CoverImage()
	if err != nil {
		t.Fatalf("CoverImage after SetCover: %v", err)
	}
	if string(data) != "imgbytes" || href != "cover.png" || mediaType != "image/png" {
		t.Errorf("got (%q, %q, %q)", data, href, mediaType)
	}

	found := false
	for _, m := range book.Package.Metadata.Meta {
		if m.Name == "cover" && m.Content == "cover-image" {
			found = true
		}
	}
	if !found {
		t.Error("expected legacy <meta name=\"cover\"> to be set")
	}
}

func TestSetCoverReplacesExisting(t *testing.T) {
	book := testCoverBook()
	book.Package.Manifest.Items = append(book.Package.Manifest.Items, Item{
		ID: "cover-image", Href: "old-cover.jpg", MediaType: "image/jpeg", Properties: "cover-image",
	})
	book.Resources["OEBPS/old-cover.jpg"] = []byte("olddata")

	book.SetCover([]byte("newdata"), "image/png")

	if len(book.Package.Manifest.Items) != 2 {
		t.Fatalf("expected manifest item replaced in place, got %d items", len(book.Package.Manifest.Items))
	}

	data, href, mediaType, err := book.CoverImage()
	if err != nil {
		t.Fatalf("CoverImage: %v", err)
	}
	if string(data) != "newdata" || href != "cover.png" || mediaType != "image/png" {
		t.Errorf("got (%q, %q, %q)", data, href, mediaType)
	}
}
