package assemble

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"epx/epub"
	"epx/internal/sourcetree"
)

// embedStylesheets walks dir/styles for *.css files, embeds each into
// resources/manifestItems, and returns the href of the first one found
// (EPUB chapters get a single linked stylesheet, per
// original_source/src/assemble/mod.rs's assemble_book).
func embedStylesheets(dir, opfDir string, resources map[string][]byte, manifestItems *[]epub.Item) (string, error) {
	stylesDir := filepath.Join(dir, "styles")
	info, err := os.Stat(stylesDir)
	if err != nil || !info.IsDir() {
		return "", nil
	}

	entries, err := os.ReadDir(stylesDir)
	if err != nil {
		return "", fmt.Errorf("reading styles directory: %w", err)
	}

	var first string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".css") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(stylesDir, entry.Name()))
		if err != nil {
			return "", fmt.Errorf("reading stylesheet %s: %w", entry.Name(), err)
		}
		href := "styles/" + entry.Name()
		resources[opfDir+href] = data
		*manifestItems = append(*manifestItems, epub.Item{
			ID:        "style-" + sourcetree.Slugify(entry.Name()),
			Href:      href,
			MediaType: "text/css",
		})
		if first == "" {
			first = href
		}
	}
	return first, nil
}

// addAssetsRecursive walks dir, embedding every file under the given ZIP
// path prefix. Grounded on
// original_source/src/assemble/mod.rs's add_assets_recursive.
func addAssetsRecursive(dir, opfDir, prefix string, resources map[string][]byte, manifestItems *[]epub.Item) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := addAssetsRecursive(path, opfDir, prefix+"/"+entry.Name(), resources, manifestItems); err != nil {
				return err
			}
			continue
		}

		href := prefix + "/" + entry.Name()
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		resources[opfDir+href] = data
		*manifestItems = append(*manifestItems, epub.Item{
			ID:        "asset-" + sourcetree.Slugify(href),
			Href:      href,
			MediaType: sourcetree.InferMediaType(entry.Name()),
		})
	}
	return nil
}
