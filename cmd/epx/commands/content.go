package commands

import (
	"epx/epub"
	"epx/internal/editops"

	"github.com/spf13/cobra"
)

var (
	contentSearchRegex      bool
	contentSearchChapter    string
	contentReplaceRegex     bool
	contentReplaceChapter   string
	contentHeadingsRestruct string
)

func init() {
	contentSearchCmd.Flags().BoolVar(&contentSearchRegex, "regex", false, "treat pattern as a regular expression")
	contentSearchCmd.Flags().StringVar(&contentSearchChapter, "chapter", "", "restrict the search to one spine idref or index")

	contentReplaceCmd.Flags().BoolVar(&contentReplaceRegex, "regex", false, "treat pattern as a regular expression")
	contentReplaceCmd.Flags().StringVar(&contentReplaceChapter, "chapter", "", "restrict the replacement to one spine idref or index")

	contentHeadingsCmd.Flags().StringVar(&contentHeadingsRestruct, "restructure", "", "rewrite heading levels, e.g. \"h2->h1,h3->h2\"")

	contentCmd.AddCommand(contentSearchCmd, contentReplaceCmd, contentHeadingsCmd)
	rootCmd.AddCommand(contentCmd)
}

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Search, replace, or restructure headings across spine content",
}

var contentSearchCmd = &cobra.Command{
	Use:   "search <input.epub> <pattern>",
	Short: "Search spine text content for a literal string or regular expression",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := openBook(args[0])
		if err != nil {
			return err
		}
		matches, err := editops.Search(book, args[1], contentSearchChapter, contentSearchRegex)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(matches)
		}
		for _, m := range matches {
			printLine("%s:%d: %s", m.ChapterID, m.LineNumber, m.Context)
		}
		return nil
	},
}

var contentReplaceCmd = &cobra.Command{
	Use:   "replace <input.epub> <pattern> <replacement>",
	Short: "Replace a literal string or regular expression within spine text nodes",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var count int
		err := editops.ModifyEPUB(args[0], func(book *epub.Book) error {
			n, err := editops.Replace(book, args[1], args[2], contentReplaceChapter, contentReplaceRegex)
			count = n
			return err
		})
		if err != nil {
			return err
		}
		printSuccess("Replaced %d match(es) in %s", count, args[0])
		return nil
	},
}

var contentHeadingsCmd = &cobra.Command{
	Use:   "headings <input.epub>",
	Short: "List spine headings, or restructure their levels with --restructure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if contentHeadingsRestruct != "" {
			var count int
			err := editops.ModifyEPUB(args[0], func(book *epub.Book) error {
				n, err := editops.RestructureHeadings(book, contentHeadingsRestruct)
				count = n
				return err
			})
			if err != nil {
				return err
			}
			printSuccess("Restructured %d heading(s) in %s", count, args[0])
			return nil
		}

		book, err := openBook(args[0])
		if err != nil {
			return err
		}
		headings := editops.ListHeadings(book)
		if flagJSON {
			return printJSON(headings)
		}
		for _, h := range headings {
			printLine("h%d  %-30s %s", h.Level, h.Href, h.Text)
		}
		return nil
	},
}
