package epub

import (
	"regexp"
	"strconv"
	"strings"
)

// GetTitle returns the first title found.
func (pkg *Package) GetTitle() string {
	if len(pkg.Metadata.Titles) > 0 {
		return pkg.Metadata.Titles[0].Value
	}
	return ""
}

// SetTitle updates the title. It overwrites existing titles.
func (pkg *Package) SetTitle(title string) {
	pkg.Metadata.Titles = []SimpleMeta{{Value: title}}
}

// GetAuthor returns the first creator.
func (pkg *Package) GetAuthor() string {
	if len(pkg.Metadata.Creators) > 0 {
		return pkg.Metadata.Creators[0].Value
	}
	return ""
}

// SetAuthor sets the author.
func (pkg *Package) SetAuthor(name string) {
	pkg.Metadata.Creators = []AuthorMeta{{
		SimpleMeta: SimpleMeta{Value: name},
		Role:       "aut",
	}}
}

// GetAuthorSort returns the file-as form of the first creator.
func (pkg *Package) GetAuthorSort() string {
	if len(pkg.Metadata.Creators) > 0 {
		return pkg.Metadata.Creators[0].FileAs
	}
	return ""
}

// GetAuthors returns every distinct author name across all creators,
// splitting any creator value that packs multiple names (e.g. "A & B").
func (pkg *Package) GetAuthors() []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range pkg.Metadata.Creators {
		for _, name := range parseAuthorString(c.Value) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

var authorSplitDelims = []string{"&", "、", " and ", ";", "；"}

// parseAuthorString splits a single creator string that may pack several
// author names separated by "&", the Chinese ideographic comma, "and",
// or a semicolon. A lone comma is ambiguous with "Last, First" and is
// left alone unless there are two or more of them.
func parseAuthorString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, d := range authorSplitDelims {
		if strings.Contains(s, d) {
			if parts := splitTrim(s, d); len(parts) > 1 {
				return parts
			}
		}
	}
	if strings.Count(s, ",") >= 2 {
		return splitTrim(s, ",")
	}
	return []string{s}
}

func splitTrim(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GetDescription returns the description.
func (pkg *Package) GetDescription() string {
	if len(pkg.Metadata.Descriptions) > 0 {
		return pkg.Metadata.Descriptions[0].Value
	}
	return ""
}

// SetDescription sets the description.
func (pkg *Package) SetDescription(desc string) {
	pkg.Metadata.Descriptions = []SimpleMeta{{Value: desc}}
}

// GetLanguage returns the primary language, or "und" (BCP-47
// "undetermined") when no language is set. OPF emission uses its own
// fallback ("en") for an empty language set, not this value.
func (pkg *Package) GetLanguage() string {
	if len(pkg.Metadata.Languages) > 0 {
		return pkg.Metadata.Languages[0].Value
	}
	return "und"
}

// SetLanguage sets the language.
func (pkg *Package) SetLanguage(lang string) {
	pkg.Metadata.Languages = []SimpleMeta{{Value: lang}}
}

// isEPUB3 reports whether the package declares an EPUB 3.x version.
func (pkg *Package) isEPUB3() bool {
	return strings.HasPrefix(strings.TrimSpace(pkg.Version), "3")
}

// GetSeries returns the series name, preferring the EPUB 3
// belongs-to-collection form and falling back to the legacy Calibre
// calibre:series meta tag used by EPUB 2 (and by EPUB 3 files that were
// never migrated).
func (pkg *Package) GetSeries() string {
	for _, m := range pkg.Metadata.Meta {
		if m.Property == "belongs-to-collection" {
			return m.Value
		}
	}
	for _, m := range pkg.Metadata.Meta {
		if m.Name == "calibre:series" {
			return m.Content
		}
	}
	return ""
}

// SetSeries sets the series name, using the form appropriate to the
// package's declared version.
func (pkg *Package) SetSeries(series string) {
	if pkg.isEPUB3() {
		for i := range pkg.Metadata.Meta {
			if pkg.Metadata.Meta[i].Property == "belongs-to-collection" {
				pkg.Metadata.Meta[i].Value = series
				return
			}
		}
		id := nextCollectionID(pkg.Metadata.Meta)
		pkg.Metadata.Meta = append(pkg.Metadata.Meta,
			Meta{ID: id, Property: "belongs-to-collection", Value: series},
			Meta{Refines: "#" + id, Property: "collection-type", Value: "series"},
		)
		return
	}
	pkg.setLegacyMeta("calibre:series", series)
}

func nextCollectionID(meta []Meta) string {
	n := 1
	for _, m := range meta {
		if m.Property == "belongs-to-collection" {
			n++
		}
	}
	return "c" + strconv.Itoa(n)
}

func collectionIDOf(meta []Meta) string {
	for _, m := range meta {
		if m.Property == "belongs-to-collection" {
			return m.ID
		}
	}
	return ""
}

// GetSeriesIndex returns the series position, reading the EPUB 3
// group-position meta refining the active collection, the
// calibre:series_index property fallback, or the legacy name/content form.
func (pkg *Package) GetSeriesIndex() string {
	if id := collectionIDOf(pkg.Metadata.Meta); id != "" {
		for _, m := range pkg.Metadata.Meta {
			if m.Refines == "#"+id && m.Property == "group-position" {
				return m.Value
			}
		}
	}
	for _, m := range pkg.Metadata.Meta {
		if m.Property == "calibre:series_index" {
			return m.Value
		}
	}
	for _, m := range pkg.Metadata.Meta {
		if m.Name == "calibre:series_index" {
			return m.Content
		}
	}
	return ""
}

// SetSeriesIndex sets the series position.
func (pkg *Package) SetSeriesIndex(index string) {
	if pkg.isEPUB3() {
		if id := collectionIDOf(pkg.Metadata.Meta); id != "" {
			for i := range pkg.Metadata.Meta {
				if pkg.Metadata.Meta[i].Refines == "#"+id && pkg.Metadata.Meta[i].Property == "group-position" {
					pkg.Metadata.Meta[i].Value = index
					return
				}
			}
			pkg.Metadata.Meta = append(pkg.Metadata.Meta, Meta{Refines: "#" + id, Property: "group-position", Value: index})
			return
		}
		// No belongs-to-collection to refine (possibly only legacy
		// calibre:series present). Use the property-form fallback
		// rather than synthesizing a collection for a legacy-only file.
		for i := range pkg.Metadata.Meta {
			if pkg.Metadata.Meta[i].Property == "calibre:series_index" {
				pkg.Metadata.Meta[i].Value = index
				return
			}
		}
		pkg.Metadata.Meta = append(pkg.Metadata.Meta, Meta{Property: "calibre:series_index", Value: index})
		return
	}
	pkg.setLegacyMeta("calibre:series_index", index)
}

// GetSubjects returns a list of tags.
func (pkg *Package) GetSubjects() []string {
	var subjects []string
	for _, s := range pkg.Metadata.Subjects {
		subjects = append(subjects, s.Value)
	}
	return subjects
}

// SetSubjects overwrites tags.
func (pkg *Package) SetSubjects(tags []string) {
	var newSubjects []SimpleMeta
	for _, t := range tags {
		newSubjects = append(newSubjects, SimpleMeta{Value: t})
	}
	pkg.Metadata.Subjects = newSubjects
}

// GetPublisher returns the first publisher.
func (pkg *Package) GetPublisher() string {
	if len(pkg.Metadata.Publishers) > 0 {
		return pkg.Metadata.Publishers[0].Value
	}
	return ""
}

// SetPublisher sets the publisher.
func (pkg *Package) SetPublisher(publisher string) {
	pkg.Metadata.Publishers = []SimpleMeta{{Value: publisher}}
}

// GetPublishDate returns the first date.
func (pkg *Package) GetPublishDate() string {
	if len(pkg.Metadata.Dates) > 0 {
		return pkg.Metadata.Dates[0].Value
	}
	return ""
}

// SetPublishDate sets the publication date.
func (pkg *Package) SetPublishDate(date string) {
	pkg.Metadata.Dates = []SimpleMeta{{Value: date}}
}

// GetProducer returns the tool that generated the EPUB, read from the
// bkp-role contributor or, failing that, the generator meta tag.
func (pkg *Package) GetProducer() string {
	for _, c := range pkg.Metadata.Contributors {
		if c.Role == "bkp" {
			return c.Value
		}
	}
	for _, m := range pkg.Metadata.Meta {
		if m.Name == "generator" {
			return m.Content
		}
	}
	return ""
}

// GetModified returns the dcterms:modified timestamp, if present.
func (pkg *Package) GetModified() string {
	for _, m := range pkg.Metadata.Meta {
		if m.Property == "dcterms:modified" {
			return m.Value
		}
	}
	return ""
}

// SetModified sets the dcterms:modified timestamp.
func (pkg *Package) SetModified(timestamp string) {
	for i := range pkg.Metadata.Meta {
		if pkg.Metadata.Meta[i].Property == "dcterms:modified" {
			pkg.Metadata.Meta[i].Value = timestamp
			return
		}
	}
	pkg.Metadata.Meta = append(pkg.Metadata.Meta, Meta{Property: "dcterms:modified", Value: timestamp})
}

// GetCoverID returns the manifest item id of the cover image, from either
// the EPUB 3 properties="cover-image" manifest attribute or the legacy
// EPUB 2 <meta name="cover" content="id"/> form.
func (pkg *Package) GetCoverID() string {
	for _, item := range pkg.Manifest.Items {
		if hasToken(item.Properties, "cover-image") {
			return item.ID
		}
	}
	for _, m := range pkg.Metadata.Meta {
		if m.Name == "cover" {
			return m.Content
		}
	}
	return ""
}

func hasToken(field, token string) bool {
	for _, t := range strings.Fields(field) {
		if t == token {
			return true
		}
	}
	return false
}

var reservedProperties = map[string]bool{
	"dcterms:modified":        true,
	"belongs-to-collection":   true,
	"collection-type":         true,
	"group-position":          true,
	"calibre:rating":          true,
	"calibre:series_index":    true,
	"nav":                     true,
}

// GetCustom returns the custom property/value meta map (e.g.
// "rendition:layout"), excluding the properties this package already
// exposes dedicated accessors for.
func (pkg *Package) GetCustom() map[string]string {
	out := make(map[string]string)
	for _, m := range pkg.Metadata.Meta {
		if m.Property == "" || reservedProperties[m.Property] {
			continue
		}
		out[m.Property] = m.Value
	}
	return out
}

// SetCustom sets (or updates) a custom EPUB 3 meta property.
func (pkg *Package) SetCustom(property, value string) {
	for i := range pkg.Metadata.Meta {
		if pkg.Metadata.Meta[i].Property == property {
			pkg.Metadata.Meta[i].Value = value
			return
		}
	}
	pkg.Metadata.Meta = append(pkg.Metadata.Meta, Meta{Property: property, Value: value})
}

// RemoveCustom removes a custom EPUB 3 meta property.
func (pkg *Package) RemoveCustom(property string) {
	var out []Meta
	for _, m := range pkg.Metadata.Meta {
		if m.Property == property {
			continue
		}
		out = append(out, m)
	}
	pkg.Metadata.Meta = out
}

// setLegacyMeta finds-or-appends a <meta name="name" content="content"/> tag.
func (pkg *Package) setLegacyMeta(name, content string) {
	for i := range pkg.Metadata.Meta {
		if pkg.Metadata.Meta[i].Name == name {
			pkg.Metadata.Meta[i].Content = content
			return
		}
	}
	pkg.Metadata.Meta = append(pkg.Metadata.Meta, Meta{Name: name, Content: content})
}

// =============================================================================
// Identifiers
// =============================================================================

// GetIdentifiers returns every identifier keyed by its normalized, lowercase
// scheme. The synthesized primary "uuid" identifier is never included here —
// it is a package implementation detail, not a catalog identifier.
func (pkg *Package) GetIdentifiers() map[string]string {
	ids := make(map[string]string)
	for _, id := range pkg.Metadata.Identifiers {
		scheme, value := id.Scheme, id.Value
		if scheme == "" {
			scheme, value = parseIdentifier("", value)
		} else {
			scheme = normalizeScheme(scheme)
		}
		if scheme == "uuid" {
			continue
		}
		ids[scheme] = value
	}
	return ids
}

// GetISBN returns the ISBN identifier, if any.
func (pkg *Package) GetISBN() string {
	return pkg.GetIdentifiers()["isbn"]
}

// GetASIN returns the ASIN identifier, if any.
func (pkg *Package) GetASIN() string {
	return pkg.GetIdentifiers()["asin"]
}

// SetIdentifier sets (or updates, case-insensitively) an identifier by
// scheme. Updating an existing identifier preserves its stored scheme
// casing; a newly created identifier stores the normalized scheme.
func (pkg *Package) SetIdentifier(scheme, value string) {
	norm := normalizeScheme(scheme)
	for i := range pkg.Metadata.Identifiers {
		id := &pkg.Metadata.Identifiers[i]
		existing := id.Scheme
		if existing == "" {
			existing, _ = parseIdentifier("", id.Value)
		}
		if normalizeScheme(existing) == norm {
			id.Value = value
			return
		}
	}
	pkg.Metadata.Identifiers = append(pkg.Metadata.Identifiers, IDMeta{Scheme: norm, Value: value})
}

// isISBNIdentifier reports whether id already represents an ISBN, whether
// via an explicit opf:scheme attribute or a urn:isbn:/isbn: prefixed or
// bare ISBN-shaped value.
func isISBNIdentifier(id IDMeta) bool {
	if normalizeScheme(id.Scheme) == "isbn" {
		return true
	}
	if id.Scheme != "" {
		return false
	}
	v := strings.ToLower(strings.TrimSpace(id.Value))
	if strings.HasPrefix(v, "urn:isbn:") || strings.HasPrefix(v, "isbn:") {
		return true
	}
	return isISBN(id.Value)
}

// SetISBN sets the ISBN, updating the first existing ISBN-shaped identifier
// in place or appending a new one. EPUB 2 packages store a plain value with
// opf:scheme="ISBN"; EPUB 3 packages use the hybrid "isbn:" value prefix
// (Calibre-compatible) with no scheme attribute.
func (pkg *Package) SetISBN(isbn string) {
	epub3 := pkg.isEPUB3()
	for i := range pkg.Metadata.Identifiers {
		id := &pkg.Metadata.Identifiers[i]
		if !isISBNIdentifier(*id) {
			continue
		}
		if epub3 {
			id.Scheme = ""
			id.Value = "isbn:" + isbn
		} else {
			id.Scheme = "ISBN"
			id.Value = isbn
		}
		return
	}
	if epub3 {
		pkg.Metadata.Identifiers = append(pkg.Metadata.Identifiers, IDMeta{Value: "isbn:" + isbn})
	} else {
		pkg.Metadata.Identifiers = append(pkg.Metadata.Identifiers, IDMeta{Scheme: "ISBN", Value: isbn})
	}
}

// SetASIN sets the ASIN identifier.
func (pkg *Package) SetASIN(asin string) {
	pkg.SetIdentifier("ASIN", asin)
}

// parseIdentifier splits a raw identifier into (scheme, value). scheme, when
// given explicitly (an opf:scheme attribute), always wins. Otherwise it
// recognizes urn:SCHEME:value and SCHEME:value forms, falls back to an
// ISBN-shape heuristic, and finally reports "unknown".
func parseIdentifier(scheme, value string) (string, string) {
	if scheme != "" {
		return normalizeScheme(scheme), value
	}
	v := strings.TrimSpace(value)
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "urn:") {
		rest := v[len("urn:"):]
		if idx := strings.Index(rest, ":"); idx > 0 {
			return normalizeScheme(rest[:idx]), rest[idx+1:]
		}
		return normalizeScheme(rest), ""
	}
	if idx := strings.Index(v, ":"); idx > 0 && isSchemeWord(v[:idx]) {
		return normalizeScheme(v[:idx]), v[idx+1:]
	}
	if isISBN(v) {
		return "isbn", v
	}
	return "unknown", v
}

var schemeWordRe = regexp.MustCompile(`^[A-Za-z][A-Za-z_-]*$`)

func isSchemeWord(s string) bool {
	return schemeWordRe.MatchString(s)
}

// normalizeScheme lowercases a scheme name and strips a "urn:" prefix.
func normalizeScheme(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "urn:")
	return s
}

// isISBN reports whether s is ISBN-10 or ISBN-13 shaped, ignoring hyphen
// and space separators. It checks shape only, not the check digit.
func isISBN(s string) bool {
	clean := stripISBNSeparators(s)
	switch len(clean) {
	case 10:
		for _, c := range clean[:9] {
			if c < '0' || c > '9' {
				return false
			}
		}
		last := clean[9]
		return (last >= '0' && last <= '9') || last == 'X' || last == 'x'
	case 13:
		if !strings.HasPrefix(clean, "978") && !strings.HasPrefix(clean, "979") {
			return false
		}
		for _, c := range clean {
			if c < '0' || c > '9' {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func stripISBNSeparators(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '-' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// =============================================================================
// Rating (Calibre extension)
// =============================================================================

// GetRatingRaw returns the stored calibre:rating value on its native 0-10
// scale, reading the EPUB 3 property form first, then the legacy name form.
func (pkg *Package) GetRatingRaw() string {
	for _, m := range pkg.Metadata.Meta {
		if m.Property == "calibre:rating" {
			return m.Value
		}
	}
	for _, m := range pkg.Metadata.Meta {
		if m.Name == "calibre:rating" {
			return m.Content
		}
	}
	return ""
}

// GetRating returns the rating on a 0-5 star scale.
func (pkg *Package) GetRating() int {
	raw := pkg.GetRatingRaw()
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n / 2
}

// SetRating sets the rating (0-5 stars, clamped), stored on Calibre's
// native 0-10 scale. Both the property and name forms are updated in place
// if both already exist; otherwise only the form matching the package
// version is written.
func (pkg *Package) SetRating(rating int) {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	raw := strconv.Itoa(rating * 2)

	var updatedProp, updatedName bool
	for i := range pkg.Metadata.Meta {
		if pkg.Metadata.Meta[i].Property == "calibre:rating" {
			pkg.Metadata.Meta[i].Value = raw
			updatedProp = true
		}
		if pkg.Metadata.Meta[i].Name == "calibre:rating" {
			pkg.Metadata.Meta[i].Content = raw
			updatedName = true
		}
	}
	if updatedProp || updatedName {
		return
	}
	if pkg.isEPUB3() {
		pkg.Metadata.Meta = append(pkg.Metadata.Meta, Meta{Property: "calibre:rating", Value: raw})
	} else {
		pkg.Metadata.Meta = append(pkg.Metadata.Meta, Meta{Name: "calibre:rating", Content: raw})
	}
}
