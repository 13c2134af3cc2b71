package editops

import (
	"fmt"

	"epx/epub"
)

// ReorderSpine moves the spine item at position from to position to,
// shifting the items between them. Grounded on
// original_source/src/manipulate/toc_edit.rs's reorder_spine (the
// identical algorithm chapter_manage.rs names reorder_chapter).
func ReorderSpine(book *epub.Book, from, to int) error {
	spine := book.Package.Spine.ItemRefs
	if from < 0 || from >= len(spine) {
		return fmt.Errorf("%w: source index %d out of range (0..%d)", epub.ErrInvalidArgument, from, len(spine))
	}
	if to < 0 || to >= len(spine) {
		return fmt.Errorf("%w: target index %d out of range (0..%d)", epub.ErrInvalidArgument, to, len(spine))
	}

	item := spine[from]
	without := append(append([]epub.ItemRef{}, spine[:from]...), spine[from+1:]...)
	result := append(without[:to:to], append([]epub.ItemRef{item}, without[to:]...)...)
	book.Package.Spine.ItemRefs = result
	return nil
}

// SetSpineOrder replaces the spine wholesale with the itemref matching
// each idref in order, erroring if any idref is absent. Grounded on
// toc_edit.rs's set_spine_order.
func SetSpineOrder(book *epub.Book, idrefs []string) error {
	byIdref := make(map[string]epub.ItemRef, len(book.Package.Spine.ItemRefs))
	for _, item := range book.Package.Spine.ItemRefs {
		byIdref[item.IDRef] = item
	}

	newSpine := make([]epub.ItemRef, 0, len(idrefs))
	for _, idref := range idrefs {
		item, ok := byIdref[idref]
		if !ok {
			return fmt.Errorf("%w: spine item %s", epub.ErrNotFound, idref)
		}
		newSpine = append(newSpine, item)
	}
	book.Package.Spine.ItemRefs = newSpine
	return nil
}
