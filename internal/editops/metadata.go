package editops

import (
	"fmt"
	"os"

	"epx/epub"
	"epx/internal/sourcetree"
)

// SetField sets a named metadata field on pkg. Known field names
// (title/creator|author/language/publisher/description/rights/
// identifier/date/subject) map to their dedicated dc: element; anything
// else becomes a custom meta entry. Grounded on
// original_source/src/manipulate/meta_edit.rs's set_field.
func SetField(pkg *epub.Package, field, value string) {
	switch field {
	case "title":
		pkg.SetTitle(value)
	case "creator", "author":
		pkg.Metadata.Creators = []epub.AuthorMeta{{SimpleMeta: epub.SimpleMeta{Value: value}}}
	case "language":
		pkg.SetLanguage(value)
	case "publisher":
		pkg.SetPublisher(value)
	case "description":
		pkg.SetDescription(value)
	case "rights":
		pkg.Metadata.Rights = []epub.SimpleMeta{{Value: value}}
	case "identifier":
		if len(pkg.Metadata.Identifiers) == 0 {
			pkg.Metadata.Identifiers = []epub.IDMeta{{Value: value}}
		} else {
			pkg.Metadata.Identifiers[0].Value = value
		}
	case "date":
		pkg.Metadata.Dates = []epub.SimpleMeta{{Value: value}}
	case "subject":
		pkg.Metadata.Subjects = append(pkg.Metadata.Subjects, epub.SimpleMeta{Value: value})
	default:
		pkg.SetCustom(field, value)
	}
}

// RemoveField clears a named metadata field, the inverse of SetField.
// Grounded on meta_edit.rs's remove_field.
func RemoveField(pkg *epub.Package, field string) {
	switch field {
	case "title":
		pkg.Metadata.Titles = nil
	case "creator", "author":
		pkg.Metadata.Creators = nil
	case "language":
		pkg.Metadata.Languages = nil
	case "publisher":
		pkg.Metadata.Publishers = nil
	case "description":
		pkg.Metadata.Descriptions = nil
	case "rights":
		pkg.Metadata.Rights = nil
	case "identifier":
		pkg.Metadata.Identifiers = nil
	case "date":
		pkg.Metadata.Dates = nil
	case "subject":
		pkg.Metadata.Subjects = nil
	default:
		pkg.RemoveCustom(field)
	}
}

// ImportMetadata replaces pkg's metadata wholesale from a YAML file in
// the same shape metadata.yml uses. Grounded on meta_edit.rs's
// import_metadata.
func ImportMetadata(pkg *epub.Package, yamlPath string) error {
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", yamlPath, err)
	}
	m, err := sourcetree.ParseBookMetadata(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", yamlPath, err)
	}

	pkg.Metadata.Titles = nil
	if m.Title != "" {
		pkg.Metadata.Titles = []epub.SimpleMeta{{Value: m.Title}}
	}
	pkg.Metadata.Creators = toAuthorMeta(m.Creators)
	pkg.Metadata.Identifiers = toIDMeta(m.Identifiers)
	pkg.Metadata.Languages = toSimpleMeta(m.Languages)
	pkg.Metadata.Publishers = toSimpleMeta(m.Publishers)
	pkg.Metadata.Dates = toSimpleMeta(m.Dates)
	pkg.Metadata.Subjects = toSimpleMeta(m.Subjects)
	if m.Description != "" {
		pkg.SetDescription(m.Description)
	} else {
		pkg.Metadata.Descriptions = nil
	}
	if m.Rights != "" {
		pkg.Metadata.Rights = []epub.SimpleMeta{{Value: m.Rights}}
	} else {
		pkg.Metadata.Rights = nil
	}
	for property := range pkg.GetCustom() {
		pkg.RemoveCustom(property)
	}
	for property, value := range m.Custom {
		pkg.SetCustom(property, value)
	}
	return nil
}

// ExportMetadata writes pkg's metadata to a YAML file in metadata.yml's
// shape. Grounded on meta_edit.rs's export_metadata.
func ExportMetadata(pkg *epub.Package, yamlPath string) error {
	m := &sourcetree.BookMetadata{
		Title:       pkg.GetTitle(),
		Creators:    authorValues(pkg.Metadata.Creators),
		Identifiers: idValues(pkg.Metadata.Identifiers),
		Languages:   simpleValues(pkg.Metadata.Languages),
		Publishers:  simpleValues(pkg.Metadata.Publishers),
		Dates:       simpleValues(pkg.Metadata.Dates),
		Description: pkg.GetDescription(),
		Subjects:    pkg.GetSubjects(),
		Custom:      pkg.GetCustom(),
	}
	if len(pkg.Metadata.Rights) > 0 {
		m.Rights = pkg.Metadata.Rights[0].Value
	}

	data, err := m.ToYAML()
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := os.WriteFile(yamlPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", yamlPath, err)
	}
	return nil
}

func toSimpleMeta(values []string) []epub.SimpleMeta {
	if len(values) == 0 {
		return nil
	}
	out := make([]epub.SimpleMeta, len(values))
	for i, v := range values {
		out[i] = epub.SimpleMeta{Value: v}
	}
	return out
}

func toAuthorMeta(values []string) []epub.AuthorMeta {
	if len(values) == 0 {
		return nil
	}
	out := make([]epub.AuthorMeta, len(values))
	for i, v := range values {
		out[i] = epub.AuthorMeta{SimpleMeta: epub.SimpleMeta{Value: v}}
	}
	return out
}

func toIDMeta(values []string) []epub.IDMeta {
	if len(values) == 0 {
		return nil
	}
	out := make([]epub.IDMeta, len(values))
	for i, v := range values {
		out[i] = epub.IDMeta{Value: v}
	}
	return out
}

func simpleValues(meta []epub.SimpleMeta) []string {
	values := make([]string, 0, len(meta))
	for _, m := range meta {
		values = append(values, m.Value)
	}
	return values
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
