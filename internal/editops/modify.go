// Package editops implements read-modify-write editing operations:
// metadata, chapter, TOC/spine, asset, and content edits applied
// directly to an in-memory Book and serialized back out.
package editops

import (
	"fmt"

	"epx/epub"
)

// ModifyEPUB opens the EPUB at path, loads it fully into memory, applies
// mutate, and writes the result back to path — an atomic read-modify-write
// transaction. Every editing operation in this package is meant to be
// called from within mutate.
func ModifyEPUB(path string, mutate func(book *epub.Book) error) error {
	r, err := epub.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	book, err := epub.NewBookFromReader(r)
	r.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := mutate(book); err != nil {
		return err
	}

	if err := epub.WriteNewEPUB(book, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
