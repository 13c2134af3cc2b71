package epub

import (
	"sort"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

const (
	tocManifestID  = "toc"
	tocHref        = "toc.xhtml"
	ncxManifestID  = "ncx"
	ncxHref        = "toc.ncx"
	ncxMediaType   = "application/x-dtbncx+xml"
	navMediaType   = "application/xhtml+xml"
	modifiedLayout = "2006-01-02T15:04:05Z"
)

// ensureWriteDefaults normalizes the package so that emission always
// satisfies the structural rules required of a written EPUB: a primary
// identifier (synthesizing a v4 UUID if none exists) carrying id="uid", a
// non-empty language, synthetic toc/ncx manifest entries, spine toc="ncx",
// and a required dcterms:modified meta.
func (pkg *Package) ensureWriteDefaults(now time.Time) {
	if len(pkg.Metadata.Identifiers) == 0 {
		pkg.Metadata.Identifiers = []IDMeta{{Value: "urn:uuid:" + uuid.New().String()}}
	}
	pkg.Metadata.Identifiers[0].ID = "uid"
	pkg.UniqueIdentifier = "uid"

	if len(pkg.Metadata.Languages) == 0 {
		pkg.Metadata.Languages = []SimpleMeta{{Value: "en"}}
	}

	var items []Item
	for _, it := range pkg.Manifest.Items {
		if it.Href == tocHref || it.Href == ncxHref {
			continue
		}
		items = append(items, it)
	}
	synthetic := []Item{
		{ID: tocManifestID, Href: tocHref, MediaType: navMediaType, Properties: "nav"},
		{ID: ncxManifestID, Href: ncxHref, MediaType: ncxMediaType},
	}
	pkg.Manifest.Items = append(synthetic, items...)

	pkg.Spine.Toc = "ncx"

	var modifiedFound bool
	var rest []Meta
	for _, m := range pkg.Metadata.Meta {
		if m.Property == "dcterms:modified" {
			modifiedFound = true
			m.Value = now.UTC().Format(modifiedLayout)
			rest = append(rest, m)
			continue
		}
		rest = append(rest, m)
	}
	if !modifiedFound {
		rest = append(rest, Meta{Property: "dcterms:modified", Value: now.UTC().Format(modifiedLayout)})
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return metaSortKey(rest[i]) < metaSortKey(rest[j])
	})
	pkg.Metadata.Meta = rest
}

func metaSortKey(m Meta) string {
	if m.Property == "dcterms:modified" {
		// dcterms:modified always sorts first regardless of lexical order.
		return ""
	}
	if m.Property != "" {
		return m.Property
	}
	return m.Name
}

// marshalOPFWithEtree serializes the Package to XML using etree, producing
// namespace-prefixed elements (dc:identifier, opf:role, ...) in the fixed
// order required of a conformant OPF: identifiers, titles, languages,
// creators, publishers, description, subjects, rights, dates,
// contributors, types, formats, sources, then meta.
func (pkg *Package) marshalOPFWithEtree() ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("package")
	root.CreateAttr("xmlns", NsOPF)
	root.CreateAttr("version", pkg.Version)
	root.CreateAttr("unique-identifier", pkg.UniqueIdentifier)
	if pkg.Prefix != "" {
		root.CreateAttr("prefix", pkg.Prefix)
	}
	if pkg.Dir != "" {
		root.CreateAttr("dir", pkg.Dir)
	}
	if pkg.Id != "" {
		root.CreateAttr("id", pkg.Id)
	}

	metadata := root.CreateElement("metadata")
	metadata.CreateAttr("xmlns:dc", NsDC)
	metadata.CreateAttr("xmlns:opf", NsOPF)

	for _, id := range pkg.Metadata.Identifiers {
		el := metadata.CreateElement("dc:identifier")
		el.SetText(id.Value)
		if id.ID != "" {
			el.CreateAttr("id", id.ID)
		}
		if id.Scheme != "" {
			el.CreateAttr("opf:scheme", id.Scheme)
		}
	}

	for _, title := range pkg.Metadata.Titles {
		el := metadata.CreateElement("dc:title")
		el.SetText(title.Value)
		if title.ID != "" {
			el.CreateAttr("id", title.ID)
		}
		if title.Lang != "" {
			el.CreateAttr("xml:lang", title.Lang)
		}
		if title.Dir != "" {
			el.CreateAttr("dir", title.Dir)
		}
	}

	for _, lang := range pkg.Metadata.Languages {
		el := metadata.CreateElement("dc:language")
		el.SetText(lang.Value)
	}

	for _, creator := range pkg.Metadata.Creators {
		el := metadata.CreateElement("dc:creator")
		el.SetText(creator.Value)
		if creator.ID != "" {
			el.CreateAttr("id", creator.ID)
		}
		if creator.FileAs != "" {
			el.CreateAttr("opf:file-as", creator.FileAs)
		}
		if creator.Role != "" {
			el.CreateAttr("opf:role", creator.Role)
		}
	}

	for _, pub := range pkg.Metadata.Publishers {
		el := metadata.CreateElement("dc:publisher")
		el.SetText(pub.Value)
	}

	for _, desc := range pkg.Metadata.Descriptions {
		el := metadata.CreateElement("dc:description")
		el.SetText(desc.Value)
	}

	for _, subj := range pkg.Metadata.Subjects {
		el := metadata.CreateElement("dc:subject")
		el.SetText(subj.Value)
	}

	for _, rights := range pkg.Metadata.Rights {
		el := metadata.CreateElement("dc:rights")
		el.SetText(rights.Value)
	}

	for _, date := range pkg.Metadata.Dates {
		el := metadata.CreateElement("dc:date")
		el.SetText(date.Value)
	}

	for _, contrib := range pkg.Metadata.Contributors {
		el := metadata.CreateElement("dc:contributor")
		el.SetText(contrib.Value)
		if contrib.ID != "" {
			el.CreateAttr("id", contrib.ID)
		}
		if contrib.FileAs != "" {
			el.CreateAttr("opf:file-as", contrib.FileAs)
		}
		if contrib.Role != "" {
			el.CreateAttr("opf:role", contrib.Role)
		}
	}

	for _, typ := range pkg.Metadata.Types {
		el := metadata.CreateElement("dc:type")
		el.SetText(typ.Value)
	}

	for _, format := range pkg.Metadata.Formats {
		el := metadata.CreateElement("dc:format")
		el.SetText(format.Value)
	}

	for _, src := range pkg.Metadata.Sources {
		el := metadata.CreateElement("dc:source")
		el.SetText(src.Value)
	}

	for _, m := range pkg.Metadata.Meta {
		el := metadata.CreateElement("meta")
		if m.Property != "" {
			el.CreateAttr("property", m.Property)
			if m.Refines != "" {
				el.CreateAttr("refines", m.Refines)
			}
			if m.Scheme != "" {
				el.CreateAttr("scheme", m.Scheme)
			}
			if m.ID != "" {
				el.CreateAttr("id", m.ID)
			}
			el.SetText(m.Value)
		} else if m.Name != "" {
			el.CreateAttr("name", m.Name)
			el.CreateAttr("content", m.Content)
		}
	}

	manifest := root.CreateElement("manifest")
	for _, item := range pkg.Manifest.Items {
		el := manifest.CreateElement("item")
		el.CreateAttr("id", item.ID)
		el.CreateAttr("href", item.Href)
		el.CreateAttr("media-type", item.MediaType)
		if item.Properties != "" {
			el.CreateAttr("properties", item.Properties)
		}
		if item.Fallback != "" {
			el.CreateAttr("fallback", item.Fallback)
		}
		if item.MediaOverlay != "" {
			el.CreateAttr("media-overlay", item.MediaOverlay)
		}
	}

	spine := root.CreateElement("spine")
	if pkg.Spine.Toc != "" {
		spine.CreateAttr("toc", pkg.Spine.Toc)
	}
	if pkg.Spine.PageProg != "" {
		spine.CreateAttr("page-progression-direction", pkg.Spine.PageProg)
	}
	for _, itemref := range pkg.Spine.ItemRefs {
		el := spine.CreateElement("itemref")
		el.CreateAttr("idref", itemref.IDRef)
		if itemref.Linear != "" {
			el.CreateAttr("linear", itemref.Linear)
		}
		if itemref.Properties != "" {
			el.CreateAttr("properties", itemref.Properties)
		}
	}

	if pkg.Guide != nil && len(pkg.Guide.References) > 0 {
		guide := root.CreateElement("guide")
		for _, ref := range pkg.Guide.References {
			el := guide.CreateElement("reference")
			el.CreateAttr("type", ref.Type)
			if ref.Title != "" {
				el.CreateAttr("title", ref.Title)
			}
			el.CreateAttr("href", ref.Href)
		}
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}
