package commands

import (
	"fmt"

	"epx/epub"
)

// openBook opens the EPUB at path and detaches a fully in-memory Book
// from it, closing the underlying zip.Reader before returning — the same
// pattern editops.ModifyEPUB uses for its read half.
func openBook(path string) (*epub.Book, error) {
	r, err := epub.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	book, err := epub.NewBookFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return book, nil
}
