package editops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"epx/epub"
	"epx/internal/sourcetree"
)

// AddAsset embeds the file at assetPath into book's resources and
// manifest, inferring its media type from extension unless
// mediaTypeOverride is non-empty. Returns the new manifest id. Grounded
// on original_source/src/manipulate/asset_manage.rs's add_asset.
func AddAsset(book *epub.Book, assetPath, mediaTypeOverride string) (string, error) {
	filename := filepath.Base(assetPath)
	if filename == "." || filename == "/" {
		return "", fmt.Errorf("%w: invalid asset path %q", epub.ErrInvalidArgument, assetPath)
	}

	mediaType := mediaTypeOverride
	if mediaType == "" {
		mediaType = sourcetree.InferMediaType(filename)
	}

	data, err := os.ReadFile(assetPath)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", epub.ErrIO, assetPath, err)
	}

	id := "asset-" + sourcetree.Slugify(filename)
	opfDir := book.OPFDir()
	book.Resources[opfDir+filename] = data

	book.Package.Manifest.Items = append(book.Package.Manifest.Items, epub.Item{
		ID:        id,
		Href:      filename,
		MediaType: mediaType,
	})

	return id, nil
}

// SetCover embeds the image at imagePath as the book's cover, inferring
// its media type from extension unless mediaTypeOverride is non-empty.
// Delegates the manifest/meta bookkeeping to epub.Book.SetCover. Grounded
// on the teacher's epub/cover.go SetCover, adapted from *epub.Reader's
// Replacements map onto *epub.Book's Resources so it composes with
// ModifyEPUB/WriteNewEPUB like every other editing operation here.
func SetCover(book *epub.Book, imagePath, mediaTypeOverride string) error {
	mediaType := mediaTypeOverride
	if mediaType == "" {
		mediaType = sourcetree.InferMediaType(filepath.Base(imagePath))
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return fmt.Errorf("%w: %s does not look like an image (media type %s)", epub.ErrInvalidArgument, imagePath, mediaType)
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", epub.ErrIO, imagePath, err)
	}

	book.SetCover(data, mediaType)
	return nil
}

// RemoveAsset deletes the manifest entry and resource bytes for an asset
// named by href or manifest id. It warns (not errors) to stderr if the
// asset's href still appears inside any XHTML/HTML resource. Grounded on
// asset_manage.rs's remove_asset.
func RemoveAsset(book *epub.Book, hrefOrID string) error {
	var item *epub.Item
	for i := range book.Package.Manifest.Items {
		it := &book.Package.Manifest.Items[i]
		if it.Href == hrefOrID || it.ID == hrefOrID {
			item = it
			break
		}
	}
	if item == nil {
		return fmt.Errorf("%w: asset %s", epub.ErrNotFound, hrefOrID)
	}

	referenced := false
	for key, data := range book.Resources {
		if !strings.HasSuffix(key, ".xhtml") && !strings.HasSuffix(key, ".html") {
			continue
		}
		if strings.Contains(string(data), item.Href) {
			referenced = true
			break
		}
	}
	if referenced {
		fmt.Fprintf(os.Stderr, "warning: asset %s is still referenced in content\n", item.Href)
	}

	id := item.ID
	items := book.Package.Manifest.Items
	filtered := items[:0]
	for _, it := range items {
		if it.ID != id {
			filtered = append(filtered, it)
		}
	}
	book.Package.Manifest.Items = filtered

	opfDir := book.OPFDir()
	delete(book.Resources, opfDir+item.Href)
	delete(book.Resources, item.Href)
	return nil
}
