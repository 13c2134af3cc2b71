package editops

import (
	"regexp"
	"strings"

	"epx/epub"
)

var tagRe = regexp.MustCompile(`<[^>]+>`)

// stripHTMLTags removes every HTML/XHTML tag and trims the remainder.
// Grounded on original_source/src/util.rs's strip_html_tags; shared by
// the TOC heading generator and the content search/replace operations.
func stripHTMLTags(html string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(html, ""))
}

var headingRe = regexp.MustCompile(`(?s)<h([1-6])[^>]*>(.*?)</h[1-6]>`)

// spineDocuments yields (manifest item, xhtml text) for every spine item
// whose manifest media type is HTML/XHTML, in spine order, skipping
// entries whose resource is missing or not valid UTF-8.
func spineDocuments(book *epub.Book) []spineDocument {
	var docs []spineDocument
	for _, spineItem := range book.Package.Spine.ItemRefs {
		item := manifestItemByID(book, spineItem.IDRef)
		if item == nil || !strings.Contains(item.MediaType, "html") {
			continue
		}
		data, ok := book.Resource(item.Href)
		if !ok {
			continue
		}
		docs = append(docs, spineDocument{item: item, idref: spineItem.IDRef, xhtml: string(data)})
	}
	return docs
}

type spineDocument struct {
	item  *epub.Item
	idref string
	xhtml string
}

// resourceKey returns the exact map key book.Resources holds href's bytes
// under, trying the OPF-relative path, the bare href, then a suffix
// match — the same priority epub.Book.Resource reads under, but
// returning the key itself so callers can write the resource back.
// Grounded on original_source/src/util.rs's find_resource_key.
func resourceKey(book *epub.Book, href string) (string, bool) {
	opfRelative := book.OPFDir() + href
	if _, ok := book.Resources[opfRelative]; ok {
		return opfRelative, true
	}
	if _, ok := book.Resources[href]; ok {
		return href, true
	}
	for key := range book.Resources {
		if strings.HasSuffix(key, href) {
			return key, true
		}
	}
	return "", false
}

func manifestItemByID(book *epub.Book, id string) *epub.Item {
	for i := range book.Package.Manifest.Items {
		if book.Package.Manifest.Items[i].ID == id {
			return &book.Package.Manifest.Items[i]
		}
	}
	return nil
}
