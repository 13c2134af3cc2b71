package epub

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// NavPoint is one entry of a navigation tree (toc, landmarks, or pageList).
// Href is OPF-relative and may carry a fragment.
type NavPoint struct {
	Label    string
	Href     string
	Children []*NavPoint
}

// Navigation holds the three ordered trees an EPUB exposes for navigation.
// A Book with no nav document at all parses to an empty Navigation rather
// than failing.
type Navigation struct {
	Toc       []*NavPoint
	Landmarks []*NavPoint
	PageList  []*NavPoint
}

// ParseNavigation locates the nav document (EPUB 3 XHTML nav, preferred) or
// NCX (EPUB 2 fallback) referenced by the manifest and parses it. Absence of
// both is not an error; it yields an empty Navigation.
func ParseNavigation(r *Reader) (*Navigation, error) {
	if r.Package == nil {
		return &Navigation{}, nil
	}

	for _, item := range r.Package.Manifest.Items {
		if hasToken(item.Properties, "nav") {
			data, err := r.readManifestItem(item)
			if err != nil {
				return nil, fmt.Errorf("%w: reading nav document %s: %v", ErrIO, item.Href, err)
			}
			return parseNavXHTML(data)
		}
	}

	for _, item := range r.Package.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			data, err := r.readManifestItem(item)
			if err != nil {
				return nil, fmt.Errorf("%w: reading ncx document %s: %v", ErrIO, item.Href, err)
			}
			return parseNCX(data)
		}
	}

	return &Navigation{}, nil
}

// readManifestItem reads the zip entry for a manifest item, resolving its
// href relative to the OPF's directory.
func (r *Reader) readManifestItem(item Item) ([]byte, error) {
	path := resolveOPFRelative(r.OpfPath, item.Href)
	f, err := r.openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// resolveOPFRelative joins an OPF-relative href with the OPF's own
// directory, producing a ZIP-root-relative path.
func resolveOPFRelative(opfPath, href string) string {
	dir := ""
	if idx := strings.LastIndex(opfPath, "/"); idx >= 0 {
		dir = opfPath[:idx+1]
	}
	if strings.HasPrefix(href, "/") {
		return strings.TrimPrefix(href, "/")
	}
	return dir + href
}

// parseNavXHTML walks the <nav> elements of an EPUB 3 nav document. Each
// <nav epub:type="toc|landmarks|page-list"> is parsed as a depth-tracking
// <ol><li><a href>label</a>...</ol> structure; a nested <ol> becomes the
// preceding <li>'s children.
func parseNavXHTML(data []byte) (*Navigation, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: nav document: %v", ErrInvalidXML, err)
	}

	nav := &Navigation{}
	for _, navElem := range doc.FindElements("//nav") {
		navType := navEpubType(navElem)
		ol := navElem.SelectElement("ol")
		if ol == nil {
			continue
		}
		points := parseNavList(ol)
		switch navType {
		case "toc":
			nav.Toc = points
		case "landmarks":
			nav.Landmarks = points
		case "page-list":
			nav.PageList = points
		}
	}
	return nav, nil
}

// navEpubType returns the epub:type attribute value regardless of which
// namespace prefix the document declared for it.
func navEpubType(el *etree.Element) string {
	for _, attr := range el.Attr {
		if attr.Key == "type" && attr.Space == "epub" {
			return attr.Value
		}
	}
	return el.SelectAttrValue("epub:type", "")
}

// parseNavList converts a single <ol> into a NavPoint slice. Each <li>
// contributes its first <a> (or <span>, for unlinked headings) as label/href
// and its nested <ol>, if any, as children.
func parseNavList(ol *etree.Element) []*NavPoint {
	var points []*NavPoint
	for _, li := range ol.SelectElements("li") {
		p := &NavPoint{}
		if a := li.SelectElement("a"); a != nil {
			p.Label = strings.TrimSpace(a.Text())
			p.Href = a.SelectAttrValue("href", "")
		} else if span := li.SelectElement("span"); span != nil {
			p.Label = strings.TrimSpace(span.Text())
		}
		if childOl := li.SelectElement("ol"); childOl != nil {
			p.Children = parseNavList(childOl)
		}
		points = append(points, p)
	}
	return points
}

// parseNCX parses an EPUB 2 NCX document's <navMap> into the toc tree, and
// its optional <pageList> into the pageList tree. NCX has no landmarks
// equivalent.
func parseNCX(data []byte) (*Navigation, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: ncx document: %v", ErrInvalidXML, err)
	}

	nav := &Navigation{}
	if navMap := doc.FindElement("//navMap"); navMap != nil {
		nav.Toc = parseNavPointList(navMap.SelectElements("navPoint"))
	}
	if pageList := doc.FindElement("//pageList"); pageList != nil {
		nav.PageList = parseNavPointList(pageList.SelectElements("pageTarget"))
	}
	return nav, nil
}

// parseNavPointList recursively converts <navPoint>/<pageTarget> elements
// (both share the navLabel/content/nested-child shape) into NavPoints.
func parseNavPointList(elems []*etree.Element) []*NavPoint {
	var points []*NavPoint
	for _, el := range elems {
		p := &NavPoint{}
		if label := el.SelectElement("navLabel"); label != nil {
			if text := label.SelectElement("text"); text != nil {
				p.Label = strings.TrimSpace(text.Text())
			}
		}
		if content := el.SelectElement("content"); content != nil {
			p.Href = content.SelectAttrValue("src", "")
		}
		p.Children = parseNavPointList(el.SelectElements("navPoint"))
		points = append(points, p)
	}
	return points
}

// RenderNavXHTML emits the EPUB 3 nav document: a toc <nav>, and landmarks/
// page-list <nav> elements when non-empty, wrapped in the fixed XHTML
// skeleton required by the package's navMediaType.
func RenderNavXHTML(nav *Navigation, title string) []byte {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective("DOCTYPE html")

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	html.CreateAttr("xmlns:epub", "http://www.idpf.org/2007/ops")

	head := html.CreateElement("head")
	meta := head.CreateElement("meta")
	meta.CreateAttr("charset", "utf-8")
	head.CreateElement("title").SetText(title)

	body := html.CreateElement("body")

	renderNavSection(body, "toc", nav.Toc, true)
	if len(nav.Landmarks) > 0 {
		renderNavSection(body, "landmarks", nav.Landmarks, false)
	}
	if len(nav.PageList) > 0 {
		renderNavSection(body, "page-list", nav.PageList, false)
	}

	doc.Indent(2)
	out, _ := doc.WriteToBytes()
	return out
}

func renderNavSection(parent *etree.Element, navType string, points []*NavPoint, hidden bool) {
	navEl := parent.CreateElement("nav")
	navEl.CreateAttr("epub:type", navType)
	if hidden && navType != "toc" {
		navEl.CreateAttr("hidden", "")
	}
	if navType == "toc" {
		navEl.CreateElement("h1").SetText("Table of Contents")
	}
	renderNavOl(navEl, points)
}

func renderNavOl(parent *etree.Element, points []*NavPoint) {
	ol := parent.CreateElement("ol")
	for _, p := range points {
		li := ol.CreateElement("li")
		if p.Href != "" {
			a := li.CreateElement("a")
			a.CreateAttr("href", p.Href)
			a.SetText(p.Label)
		} else {
			li.CreateElement("span").SetText(p.Label)
		}
		if len(p.Children) > 0 {
			renderNavOl(li, p.Children)
		}
	}
}

// RenderNCX emits the EPUB 2 NCX fallback document with a monotonically
// increasing playOrder assigned by a DFS walk of the toc tree, matching the
// nav document's ordering.
func RenderNCX(nav *Navigation, title, uid string) []byte {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	ncx := doc.CreateElement("ncx")
	ncx.CreateAttr("xmlns", "http://www.daisy.org/z3986/2005/ncx/")
	ncx.CreateAttr("version", "2005-1")

	head := ncx.CreateElement("head")
	uidMeta := head.CreateElement("meta")
	uidMeta.CreateAttr("name", "dtb:uid")
	uidMeta.CreateAttr("content", uid)
	depthMeta := head.CreateElement("meta")
	depthMeta.CreateAttr("name", "dtb:depth")
	depthMeta.CreateAttr("content", "1")

	docTitle := ncx.CreateElement("docTitle")
	docTitle.CreateElement("text").SetText(title)

	navMap := ncx.CreateElement("navMap")
	order := 1
	renderNavPoints(navMap, nav.Toc, &order)

	if len(nav.PageList) > 0 {
		pageList := ncx.CreateElement("pageList")
		pageOrder := 1
		for _, p := range nav.PageList {
			target := pageList.CreateElement("pageTarget")
			target.CreateAttr("id", fmt.Sprintf("page-%d", pageOrder))
			target.CreateAttr("playOrder", fmt.Sprintf("%d", pageOrder))
			target.CreateAttr("value", fmt.Sprintf("%d", pageOrder))
			target.CreateAttr("type", "normal")
			label := target.CreateElement("navLabel")
			label.CreateElement("text").SetText(p.Label)
			content := target.CreateElement("content")
			content.CreateAttr("src", p.Href)
			pageOrder++
		}
	}

	doc.Indent(2)
	out, _ := doc.WriteToBytes()
	return out
}

func renderNavPoints(parent *etree.Element, points []*NavPoint, order *int) {
	for _, p := range points {
		np := parent.CreateElement("navPoint")
		np.CreateAttr("id", fmt.Sprintf("navpoint-%d", *order))
		np.CreateAttr("playOrder", fmt.Sprintf("%d", *order))
		*order++

		label := np.CreateElement("navLabel")
		label.CreateElement("text").SetText(p.Label)
		content := np.CreateElement("content")
		content.CreateAttr("src", p.Href)

		renderNavPoints(np, p.Children, order)
	}
}
