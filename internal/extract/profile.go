package extract

import (
	"regexp"
	"strings"

	"epx/epub"
)

// Genre is a heuristic structural classification of a book, grounded on
// original_source/src/extract/profile.rs's BookGenre.
type Genre string

const (
	GenreFiction     Genre = "Fiction"
	GenreTechnical   Genre = "Technical"
	GenreReference   Genre = "Reference"
	GenreIllustrated Genre = "Illustrated"
	GenreMinimal     Genre = "Minimal"
)

// Profile is the structural analysis recorded under metadata.yml's epx
// sub-map when extraction computes a book profile.
type Profile struct {
	Genre               Genre
	SpineCount          int
	ImageCount          int
	CrossReferenceCount int
	HasImageGallery     bool
	HasSVGCover         bool
	EmptyAltCount       int
}

var (
	profileHrefRe     = regexp.MustCompile(`href="[^"]*#[^"]+"`)
	profileImgRe      = regexp.MustCompile(`<img\b[^>]*>`)
	profileSVGImageRe = regexp.MustCompile(`(?is)<svg\b[^>]*>.*?<image\b[^>]*>.*?</svg>`)
	profileEmptyAltRe = regexp.MustCompile(`<img\b[^>]*\balt\s*=\s*""[^>]*>`)
	profileHasAltRe   = regexp.MustCompile(`\balt\s*=`)
)

// Analyze scans every spine XHTML resource of book for image/cross-reference
// density and classifies a genre. Grounded on profile.rs's analyze_book.
func Analyze(book *epub.Book) Profile {
	var (
		imageCount      int
		crossRefCount   int
		hasSVGCover     bool
		emptyAltCount   int
		galleryChapters int
	)

	spineCount := len(book.Package.Spine.ItemRefs)

	for _, item := range book.Package.Spine.ItemRefs {
		manifestItem := findManifestItem(book.Package, item.IDRef)
		if manifestItem == nil {
			continue
		}
		mt := manifestItem.MediaType
		if !strings.Contains(mt, "html") && !strings.Contains(mt, "xml") {
			continue
		}
		data, ok := book.Resource(manifestItem.Href)
		if !ok {
			continue
		}
		xhtml := string(data)

		chapterImages := len(profileImgRe.FindAllString(xhtml, -1))
		imageCount += chapterImages
		crossRefCount += len(profileHrefRe.FindAllString(xhtml, -1))

		emptyAlt := len(profileEmptyAltRe.FindAllString(xhtml, -1))
		missingAlt := 0
		for _, tag := range profileImgRe.FindAllString(xhtml, -1) {
			if !profileHasAltRe.MatchString(tag) {
				missingAlt++
			}
		}
		emptyAltCount += emptyAlt + missingAlt

		if profileSVGImageRe.MatchString(xhtml) {
			hasSVGCover = true
		}

		textLen := len(xhtml) - chapterImages*200
		if chapterImages > 5 && chapterImages*100 > textLen {
			galleryChapters++
		}
	}

	return Profile{
		Genre:               classifyGenre(spineCount, imageCount, crossRefCount),
		SpineCount:          spineCount,
		ImageCount:          imageCount,
		CrossReferenceCount: crossRefCount,
		HasImageGallery:     galleryChapters > 0,
		HasSVGCover:         hasSVGCover,
		EmptyAltCount:       emptyAltCount,
	}
}

func classifyGenre(spineCount, imageCount, crossRefs int) Genre {
	switch {
	case imageCount > 100 && crossRefs > 500:
		return GenreTechnical
	case spineCount > 100:
		return GenreReference
	case imageCount > 10 && crossRefs < 10:
		return GenreIllustrated
	case spineCount < 15 && imageCount < 5:
		return GenreMinimal
	default:
		return GenreFiction
	}
}
