package commands

import (
	"fmt"
	"os"
	"strconv"

	"epx/epub"
	"epx/internal/convert"
	"epx/internal/editops"

	"github.com/spf13/cobra"
)

var (
	chapterAddAfter   string
	chapterAddTitle   string
	chapterExtractOut string
)

func init() {
	chapterAddCmd.Flags().StringVar(&chapterAddAfter, "after", "", "insert after this spine index or idref (default: append)")
	chapterAddCmd.Flags().StringVar(&chapterAddTitle, "title", "", "chapter title (default: first # heading, else the file's stem)")
	chapterExtractCmd.Flags().StringVar(&chapterExtractOut, "output", "", "write Markdown to this file instead of stdout")

	chapterCmd.AddCommand(chapterListCmd, chapterExtractCmd, chapterAddCmd, chapterRemoveCmd, chapterReorderCmd)
	rootCmd.AddCommand(chapterCmd)
}

var chapterCmd = &cobra.Command{
	Use:   "chapter",
	Short: "List, extract, add, remove, or reorder spine chapters",
}

type chapterListEntry struct {
	Index int    `json:"index"`
	IDRef string `json:"idref"`
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
}

var chapterListCmd = &cobra.Command{
	Use:   "list <input.epub>",
	Short: "List the spine's chapters in reading order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := openBook(args[0])
		if err != nil {
			return err
		}

		var entries []chapterListEntry
		for i, ref := range book.Package.Spine.ItemRefs {
			item := manifestItemByID(book, ref.IDRef)
			entry := chapterListEntry{Index: i, IDRef: ref.IDRef}
			if item != nil {
				entry.Href = item.Href
			}
			if label, ok := navLabelForIndex(book, i); ok {
				entry.Title = label
			}
			entries = append(entries, entry)
		}

		if flagJSON {
			return printJSON(entries)
		}
		for _, e := range entries {
			printLine("%2d  %-24s %-30s %s", e.Index, e.IDRef, e.Href, e.Title)
		}
		return nil
	},
}

var chapterExtractCmd = &cobra.Command{
	Use:   "extract <input.epub> <idref-or-index>",
	Short: "Convert one chapter's XHTML content to Markdown",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := openBook(args[0])
		if err != nil {
			return err
		}
		idref, href, err := resolveSpineArg(book, args[1])
		if err != nil {
			return err
		}
		xhtml, ok := book.Resource(href)
		if !ok {
			return fmt.Errorf("%w: resource for chapter %s", epub.ErrNotFound, idref)
		}
		md, err := convert.HTMLToMarkdown(string(xhtml), nil, nil)
		if err != nil {
			return fmt.Errorf("converting chapter %s: %w", idref, err)
		}

		if chapterExtractOut == "" {
			os.Stdout.WriteString(md)
			return nil
		}
		if err := os.WriteFile(chapterExtractOut, []byte(md), 0o644); err != nil {
			return fmt.Errorf("%w: writing %s: %v", epub.ErrIO, chapterExtractOut, err)
		}
		printSuccess("Wrote %s", chapterExtractOut)
		return nil
	},
}

var chapterAddCmd = &cobra.Command{
	Use:   "add <input.epub> <chapter.md>",
	Short: "Convert a Markdown file to XHTML and insert it as a new chapter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var newID string
		err := editops.ModifyEPUB(args[0], func(book *epub.Book) error {
			id, err := editops.AddChapter(book, args[1], chapterAddAfter, chapterAddTitle)
			newID = id
			return err
		})
		if err != nil {
			return err
		}
		printSuccess("Added chapter %s to %s", newID, args[0])
		return nil
	},
}

var chapterRemoveCmd = &cobra.Command{
	Use:   "remove <input.epub> <idref-or-index>",
	Short: "Remove a chapter from the spine, manifest, and table of contents",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var removed string
		err := editops.ModifyEPUB(args[0], func(book *epub.Book) error {
			id, err := editops.RemoveChapter(book, args[1])
			removed = id
			return err
		})
		if err != nil {
			return err
		}
		printSuccess("Removed chapter %s from %s", removed, args[0])
		return nil
	},
}

var chapterReorderCmd = &cobra.Command{
	Use:   "reorder <input.epub> <from-index> <to-index>",
	Short: "Move a chapter to a new position in the spine",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: from-index %q is not an integer", epub.ErrInvalidArgument, args[1])
		}
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("%w: to-index %q is not an integer", epub.ErrInvalidArgument, args[2])
		}
		err = editops.ModifyEPUB(args[0], func(book *epub.Book) error {
			return editops.ReorderChapter(book, from, to)
		})
		if err != nil {
			return err
		}
		printSuccess("Moved chapter %d to position %d in %s", from, to, args[0])
		return nil
	},
}

// resolveSpineArg resolves a spine index or idref to (idref, manifest
// href), the argument convention chapter/spine/content commands share
// with editops' own resolveChapter.
func resolveSpineArg(book *epub.Book, idOrIndex string) (string, string, error) {
	if idx, err := strconv.Atoi(idOrIndex); err == nil {
		if idx >= 0 && idx < len(book.Package.Spine.ItemRefs) {
			idref := book.Package.Spine.ItemRefs[idx].IDRef
			if item := manifestItemByID(book, idref); item != nil {
				return idref, item.Href, nil
			}
		}
	}
	for _, ref := range book.Package.Spine.ItemRefs {
		if ref.IDRef == idOrIndex {
			if item := manifestItemByID(book, idOrIndex); item != nil {
				return idOrIndex, item.Href, nil
			}
		}
	}
	return "", "", fmt.Errorf("%w: chapter %s", epub.ErrNotFound, idOrIndex)
}

func manifestItemByID(book *epub.Book, id string) *epub.Item {
	for i := range book.Package.Manifest.Items {
		if book.Package.Manifest.Items[i].ID == id {
			return &book.Package.Manifest.Items[i]
		}
	}
	return nil
}

func navLabelForIndex(book *epub.Book, spineIndex int) (string, bool) {
	if book.Navigation == nil || spineIndex >= len(book.Package.Spine.ItemRefs) {
		return "", false
	}
	item := manifestItemByID(book, book.Package.Spine.ItemRefs[spineIndex].IDRef)
	if item == nil {
		return "", false
	}
	return findNavLabel(book.Navigation.Toc, item.Href)
}

func findNavLabel(points []*epub.NavPoint, href string) (string, bool) {
	for _, p := range points {
		if p.Href == href {
			return p.Label, true
		}
		if label, ok := findNavLabel(p.Children, href); ok {
			return label, true
		}
	}
	return "", false
}
