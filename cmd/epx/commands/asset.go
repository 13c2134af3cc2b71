package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"epx/epub"
	"epx/internal/editops"

	"github.com/spf13/cobra"
)

var (
	assetAddMediaType      string
	assetSetCoverMediaType string
)

func init() {
	assetAddCmd.Flags().StringVar(&assetAddMediaType, "media-type", "", "override the inferred media type")
	assetSetCoverCmd.Flags().StringVar(&assetSetCoverMediaType, "media-type", "", "override the inferred media type")

	assetCmd.AddCommand(assetListCmd, assetExtractCmd, assetExtractAllCmd, assetAddCmd, assetRemoveCmd, assetSetCoverCmd)
	rootCmd.AddCommand(assetCmd)
}

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "List, extract, add, or remove non-document manifest resources",
}

type assetEntry struct {
	ID        string `json:"id"`
	Href      string `json:"href"`
	MediaType string `json:"media_type"`
}

// isDocumentMediaType reports whether mt is spine content rather than an
// embeddable asset (image, font, stylesheet, ...).
func isDocumentMediaType(mt string) bool {
	return strings.Contains(mt, "html") || strings.Contains(mt, "xml")
}

func assetItems(book *epub.Book) []assetEntry {
	var entries []assetEntry
	for _, item := range book.Package.Manifest.Items {
		if isDocumentMediaType(item.MediaType) {
			continue
		}
		entries = append(entries, assetEntry{ID: item.ID, Href: item.Href, MediaType: item.MediaType})
	}
	return entries
}

var assetListCmd = &cobra.Command{
	Use:   "list <input.epub>",
	Short: "List the book's non-document assets (images, fonts, styles, ...)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := openBook(args[0])
		if err != nil {
			return err
		}
		entries := assetItems(book)
		if flagJSON {
			return printJSON(entries)
		}
		for _, e := range entries {
			printLine("%-12s %-40s %s", e.ID, e.Href, e.MediaType)
		}
		return nil
	},
}

var assetExtractCmd = &cobra.Command{
	Use:   "extract <input.epub> <href-or-id> <output-file>",
	Short: "Write one asset's raw bytes to a file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := openBook(args[0])
		if err != nil {
			return err
		}
		item := findAssetItem(book, args[1])
		if item == nil {
			return fmt.Errorf("%w: asset %s", epub.ErrNotFound, args[1])
		}
		data, ok := book.Resource(item.Href)
		if !ok {
			return fmt.Errorf("%w: resource for asset %s", epub.ErrNotFound, args[1])
		}
		if err := os.WriteFile(args[2], data, 0o644); err != nil {
			return fmt.Errorf("%w: writing %s: %v", epub.ErrIO, args[2], err)
		}
		printSuccess("Wrote %s", args[2])
		return nil
	},
}

var assetExtractAllCmd = &cobra.Command{
	Use:   "extract-all <input.epub> <dest-dir>",
	Short: "Write every non-document asset to a destination directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := openBook(args[0])
		if err != nil {
			return err
		}
		if err := os.MkdirAll(args[1], 0o755); err != nil {
			return fmt.Errorf("%w: creating %s: %v", epub.ErrIO, args[1], err)
		}

		count := 0
		for _, item := range book.Package.Manifest.Items {
			if isDocumentMediaType(item.MediaType) {
				continue
			}
			data, ok := book.Resource(item.Href)
			if !ok {
				printWarn("warning: asset %s has no resource bytes", item.Href)
				continue
			}
			dest := filepath.Join(args[1], filepath.Base(item.Href))
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				return fmt.Errorf("%w: writing %s: %v", epub.ErrIO, dest, err)
			}
			count++
		}
		printSuccess("Extracted %d asset(s) to %s", count, args[1])
		return nil
	},
}

var assetAddCmd = &cobra.Command{
	Use:   "add <input.epub> <asset-file>",
	Short: "Embed a file into the book as a new manifest asset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var newID string
		err := editops.ModifyEPUB(args[0], func(book *epub.Book) error {
			id, err := editops.AddAsset(book, args[1], assetAddMediaType)
			newID = id
			return err
		})
		if err != nil {
			return err
		}
		printSuccess("Added asset %s to %s", newID, args[0])
		return nil
	},
}

var assetSetCoverCmd = &cobra.Command{
	Use:   "set-cover <input.epub> <image-file>",
	Short: "Replace or add the book's cover image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := editops.ModifyEPUB(args[0], func(book *epub.Book) error {
			return editops.SetCover(book, args[1], assetSetCoverMediaType)
		})
		if err != nil {
			return err
		}
		printSuccess("Set cover of %s from %s", args[0], args[1])
		return nil
	},
}

var assetRemoveCmd = &cobra.Command{
	Use:   "remove <input.epub> <href-or-id>",
	Short: "Remove an asset from the manifest and resources",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := editops.ModifyEPUB(args[0], func(book *epub.Book) error {
			return editops.RemoveAsset(book, args[1])
		})
		if err != nil {
			return err
		}
		printSuccess("Removed asset %s from %s", args[1], args[0])
		return nil
	},
}

func findAssetItem(book *epub.Book, hrefOrID string) *epub.Item {
	for i := range book.Package.Manifest.Items {
		item := &book.Package.Manifest.Items[i]
		if item.ID == hrefOrID || item.Href == hrefOrID {
			return item
		}
	}
	return nil
}
