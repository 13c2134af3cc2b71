package commands

import (
	"fmt"
	"strings"

	"epx/epub"
	"epx/internal/assemble"
	"epx/internal/extract"

	"github.com/spf13/cobra"
)

var (
	bookExtractProfile bool
	bookInfoProfile    bool
)

func init() {
	bookExtractCmd.Flags().BoolVar(&bookExtractProfile, "profile", false, "compute and record a structural book profile")
	bookInfoCmd.Flags().BoolVar(&bookInfoProfile, "profile", false, "include the structural book profile")

	bookCmd.AddCommand(bookInfoCmd, bookExtractCmd, bookAssembleCmd, bookValidateCmd)
	rootCmd.AddCommand(bookCmd)
}

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Inspect, extract, assemble, or validate a whole EPUB",
}

var bookInfoCmd = &cobra.Command{
	Use:   "info <input.epub>",
	Short: "Print the book's metadata and structural summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := openBook(args[0])
		if err != nil {
			return err
		}
		return printBookInfo(book)
	},
}

var bookExtractCmd = &cobra.Command{
	Use:   "extract <input.epub> <dest-dir>",
	Short: "Project a book onto a Markdown/YAML source tree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := openBook(args[0])
		if err != nil {
			return err
		}
		result, err := extract.Extract(book, args[1], extract.Options{IncludeProfile: bookExtractProfile})
		if err != nil {
			return fmt.Errorf("extracting: %w", err)
		}
		for _, warning := range result.Warnings {
			printWarn("warning: %s", warning)
		}
		if flagJSON {
			return printJSON(struct {
				ChapterCount int      `json:"chapter_count"`
				Warnings     []string `json:"warnings"`
			}{len(result.ChapterFiles), result.Warnings})
		}
		printSuccess("Extracted %d chapter(s) to %s", len(result.ChapterFiles), args[1])
		return nil
	},
}

var bookAssembleCmd = &cobra.Command{
	Use:   "assemble <src-dir> <output.epub>",
	Short: "Build an EPUB from a Markdown/YAML source tree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := assemble.Package(args[0], args[1]); err != nil {
			return fmt.Errorf("assembling: %w", err)
		}
		printSuccess("Assembled %s", args[1])
		return nil
	},
}

var bookValidateCmd = &cobra.Command{
	Use:   "validate <input.epub>",
	Short: "Check structural validity (spine/manifest consistency, required metadata)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := openBook(args[0])
		if err != nil {
			return err
		}
		problems := validateBook(book)
		if flagJSON {
			return printJSON(struct {
				Valid    bool     `json:"valid"`
				Problems []string `json:"problems,omitempty"`
			}{len(problems) == 0, problems})
		}
		if len(problems) == 0 {
			printSuccess("%s is structurally valid", args[0])
			return nil
		}
		for _, p := range problems {
			printLine("- %s", p)
		}
		return fmt.Errorf("%d validation problem(s) found", len(problems))
	},
}

// validateBook checks the invariants of a structurally valid round trip:
// every spine idref resolves to a manifest item, and primary
// title/language/identifier are present.
func validateBook(book *epub.Book) []string {
	var problems []string

	manifestIDs := make(map[string]bool, len(book.Package.Manifest.Items))
	for _, item := range book.Package.Manifest.Items {
		manifestIDs[item.ID] = true
	}
	for i, ref := range book.Package.Spine.ItemRefs {
		if !manifestIDs[ref.IDRef] {
			problems = append(problems, fmt.Sprintf("spine[%d] idref %q has no manifest item", i, ref.IDRef))
		}
	}

	if book.Package.GetTitle() == "" {
		problems = append(problems, "missing primary title")
	}
	if len(book.Package.Metadata.Languages) == 0 || book.Package.Metadata.Languages[0].Value == "" {
		problems = append(problems, "missing primary language")
	}
	if len(book.Package.Metadata.Identifiers) == 0 {
		problems = append(problems, "missing primary identifier")
	}

	return problems
}

type bookInfoJSON struct {
	Title        string            `json:"title"`
	Authors      []string          `json:"authors,omitempty"`
	Language     string            `json:"language"`
	Version      string            `json:"version"`
	ChapterCount int               `json:"chapter_count"`
	Identifiers  map[string]string `json:"identifiers,omitempty"`
	CoverHref    string            `json:"cover_href,omitempty"`
	CoverMedia   string            `json:"cover_media_type,omitempty"`
	Profile      *extract.Profile  `json:"profile,omitempty"`
}

func printBookInfo(book *epub.Book) error {
	info := bookInfoJSON{
		Title:        book.Package.GetTitle(),
		Authors:      book.Package.GetAuthors(),
		Language:     book.Package.GetLanguage(),
		Version:      bookVersion(book.Package.Version),
		ChapterCount: len(book.Package.Spine.ItemRefs),
		Identifiers:  book.Package.GetIdentifiers(),
	}
	if bookInfoProfile {
		profile := extract.Analyze(book)
		info.Profile = &profile

		if _, href, mediaType, err := book.CoverImage(); err == nil {
			info.CoverHref = href
			info.CoverMedia = mediaType
		}
	}

	if flagJSON {
		return printJSON(info)
	}

	printLine("Title:      %s", info.Title)
	if len(info.Authors) > 0 {
		printLine("Author(s):  %s", strings.Join(info.Authors, ", "))
	}
	printLine("Language:   %s", info.Language)
	printLine("Version:    %s", info.Version)
	printLine("Chapters:   %d", info.ChapterCount)
	if info.Profile != nil {
		printLine("Genre:      %s", info.Profile.Genre)
		printLine("Images:     %d", info.Profile.ImageCount)
	}
	if info.CoverHref != "" {
		printLine("Cover:      %s (%s)", info.CoverHref, info.CoverMedia)
	}
	return nil
}

func bookVersion(v string) string {
	if strings.HasPrefix(v, "3") {
		return "EPUB3"
	}
	if strings.HasPrefix(v, "2") {
		return "EPUB2"
	}
	if v == "" {
		return "unknown"
	}
	return v
}
