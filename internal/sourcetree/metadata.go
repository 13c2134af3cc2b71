package sourcetree

import "gopkg.in/yaml.v3"

// BookMetadata is the YAML mirror of an epub.Package's Metadata written to
// metadata.yml, per spec.md §6.2. The Epx sub-map carries extraction
// provenance (source_format, epub_version, extracted_date) and, when
// computed, the book profile fields from profile.go.
type BookMetadata struct {
	Title       string            `yaml:"title,omitempty"`
	Creators    []string          `yaml:"creators,omitempty"`
	Identifiers []string          `yaml:"identifiers,omitempty"`
	Languages   []string          `yaml:"languages,omitempty"`
	Publishers  []string          `yaml:"publishers,omitempty"`
	Dates       []string          `yaml:"dates,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Subjects    []string          `yaml:"subjects,omitempty"`
	Rights      string            `yaml:"rights,omitempty"`
	Custom      map[string]string `yaml:"custom,omitempty"`
	Epx         map[string]string `yaml:"epx,omitempty"`
}

// ToYAML marshals the metadata to its on-disk YAML form.
func (m *BookMetadata) ToYAML() ([]byte, error) {
	return yaml.Marshal(m)
}

// ParseBookMetadata reads metadata.yml content back into a BookMetadata.
func ParseBookMetadata(data []byte) (*BookMetadata, error) {
	var m BookMetadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ChapterFrontmatter is the YAML frontmatter block written at the top of
// every extracted chapter file, per spec.md §6.2.
type ChapterFrontmatter struct {
	OriginalFile string `yaml:"original_file"`
	OriginalID   string `yaml:"original_id,omitempty"`
	SpineIndex   int    `yaml:"spine_index"`
}

// ToYAMLHeader renders the frontmatter as a "---\n...\n---\n\n" block ready
// to prepend to a chapter's Markdown body.
func (c *ChapterFrontmatter) ToYAMLHeader() ([]byte, error) {
	body, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+8)
	out = append(out, "---\n"...)
	out = append(out, body...)
	out = append(out, "---\n\n"...)
	return out, nil
}
