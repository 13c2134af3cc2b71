package commands

import (
	"io"
	"os"
	"strings"

	"epx/epub"
	"epx/internal/editops"

	"github.com/spf13/cobra"
)

var tocGenerateMaxDepth int

func init() {
	tocGenerateCmd.Flags().IntVar(&tocGenerateMaxDepth, "max-depth", 3, "deepest heading level (h1-h6) to include")

	tocCmd.AddCommand(tocShowCmd, tocSetCmd, tocGenerateCmd)
	rootCmd.AddCommand(tocCmd)
}

var tocCmd = &cobra.Command{
	Use:   "toc",
	Short: "Show, replace, or regenerate the table of contents",
}

type tocEntryJSON struct {
	Label    string         `json:"label"`
	Href     string         `json:"href"`
	Children []tocEntryJSON `json:"children,omitempty"`
}

var tocShowCmd = &cobra.Command{
	Use:   "show <input.epub>",
	Short: "Print the navigation tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := openBook(args[0])
		if err != nil {
			return err
		}
		var toc []*epub.NavPoint
		if book.Navigation != nil {
			toc = book.Navigation.Toc
		}
		if flagJSON {
			return printJSON(toTOCJSON(toc))
		}
		printTOCTree(toc, 0)
		return nil
	},
}

// tocSetMarkdownFile, when set, reads the replacement TOC from a file
// instead of stdin.
var tocSetMarkdownFile string

var tocSetCmd = &cobra.Command{
	Use:   "set <input.epub> [toc.md]",
	Short: "Replace the table of contents from a SUMMARY.md-shaped Markdown list",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 2 {
			data, err = os.ReadFile(args[1])
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return err
		}

		err = editops.ModifyEPUB(args[0], func(book *epub.Book) error {
			return editops.SetTOCFromMarkdown(book, string(data))
		})
		if err != nil {
			return err
		}
		printSuccess("Replaced table of contents in %s", args[0])
		return nil
	},
}

var tocGenerateCmd = &cobra.Command{
	Use:   "generate <input.epub>",
	Short: "Rebuild the table of contents from spine heading elements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := editops.ModifyEPUB(args[0], func(book *epub.Book) error {
			return editops.GenerateTOC(book, tocGenerateMaxDepth)
		})
		if err != nil {
			return err
		}
		printSuccess("Regenerated table of contents in %s", args[0])
		return nil
	},
}

func toTOCJSON(points []*epub.NavPoint) []tocEntryJSON {
	entries := make([]tocEntryJSON, 0, len(points))
	for _, p := range points {
		entries = append(entries, tocEntryJSON{
			Label:    p.Label,
			Href:     p.Href,
			Children: toTOCJSON(p.Children),
		})
	}
	return entries
}

func printTOCTree(points []*epub.NavPoint, depth int) {
	for _, p := range points {
		printLine("%s- %s (%s)", strings.Repeat("  ", depth), p.Label, p.Href)
		printTOCTree(p.Children, depth+1)
	}
}
