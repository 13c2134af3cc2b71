package epub

import "fmt"

// CoverImage locates the book's cover resource using the same three-strategy
// search order as EPUB readers in the wild: an EPUB 2 <meta name="cover">
// pointer, an EPUB 3 manifest item with properties="cover-image", then the
// conventional id="cover"/"cover-image" fallback. Returns the resource bytes,
// its manifest href, and its declared media type.
func (b *Book) CoverImage() (data []byte, href string, mediaType string, err error) {
	var coverItemID string

	for _, m := range b.Package.Metadata.Meta {
		if m.Name == "cover" {
			coverItemID = m.Content
			break
		}
	}

	if coverItemID == "" {
		for _, item := range b.Package.Manifest.Items {
			if item.Properties == "cover-image" {
				coverItemID = item.ID
				break
			}
		}
	}

	if coverItemID == "" {
		for _, item := range b.Package.Manifest.Items {
			if item.ID == "cover" || item.ID == "cover-image" {
				coverItemID = item.ID
				break
			}
		}
	}

	if coverItemID == "" {
		return nil, "", "", fmt.Errorf("%w: no cover image found", ErrNotFound)
	}

	var coverItem *Item
	for i := range b.Package.Manifest.Items {
		if b.Package.Manifest.Items[i].ID == coverItemID {
			coverItem = &b.Package.Manifest.Items[i]
			break
		}
	}
	if coverItem == nil {
		return nil, "", "", fmt.Errorf("%w: cover item %s not found in manifest", ErrNotFound, coverItemID)
	}

	resourceData, ok := b.Resource(coverItem.Href)
	if !ok {
		return nil, "", "", fmt.Errorf("%w: cover resource %s not found", ErrNotFound, coverItem.Href)
	}
	return resourceData, coverItem.Href, coverItem.MediaType, nil
}

// SetCover replaces or adds the book's cover image: the resource bytes go
// straight into b.Resources (WriteNewEPUB serializes every entry there),
// an existing cover-image manifest item is updated in place, and a new one
// is created with the EPUB 3 "cover-image" property plus the EPUB 2
// <meta name="cover"> fallback when none existed.
func (b *Book) SetCover(data []byte, mediaType string) {
	ext := ".jpg"
	if mediaType == "image/png" {
		ext = ".png"
	}
	fileName := "cover" + ext
	b.Resources[b.OPFDir()+fileName] = data

	var itemID string
	found := false
	for i, item := range b.Package.Manifest.Items {
		if item.Properties == "cover-image" || item.ID == "cover" {
			b.Package.Manifest.Items[i].Href = fileName
			b.Package.Manifest.Items[i].MediaType = mediaType
			itemID = item.ID
			found = true
			break
		}
	}

	if !found {
		itemID = "cover-image"
		b.Package.Manifest.Items = append(b.Package.Manifest.Items, Item{
			ID:         itemID,
			Href:       fileName,
			MediaType:  mediaType,
			Properties: "cover-image",
		})
	}

	metaFound := false
	for i, m := range b.Package.Metadata.Meta {
		if m.Name == "cover" {
			b.Package.Metadata.Meta[i].Content = itemID
			metaFound = true
			break
		}
	}
	if !metaFound {
		b.Package.setLegacyMeta("cover", itemID)
	}
}
