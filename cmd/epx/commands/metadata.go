package commands

import (
	"fmt"
	"strings"

	"epx/epub"
	"epx/internal/editops"

	"github.com/spf13/cobra"
)

var (
	metaTitle       string
	metaAuthor      string
	metaLanguage    string
	metaPublisher   string
	metaDescription string
	metaRights      string
	metaIdentifier  string
	metaDate        string
	metaSubject     string
	metaCustom      []string
)

func init() {
	metadataSetCmd.Flags().StringVar(&metaTitle, "title", "", "set the title")
	metadataSetCmd.Flags().StringVar(&metaAuthor, "author", "", "set the (first) author")
	metadataSetCmd.Flags().StringVar(&metaLanguage, "language", "", "set the language")
	metadataSetCmd.Flags().StringVar(&metaPublisher, "publisher", "", "set the publisher")
	metadataSetCmd.Flags().StringVar(&metaDescription, "description", "", "set the description")
	metadataSetCmd.Flags().StringVar(&metaRights, "rights", "", "set the rights statement")
	metadataSetCmd.Flags().StringVar(&metaIdentifier, "identifier", "", "set the primary identifier")
	metadataSetCmd.Flags().StringVar(&metaDate, "date", "", "set the publication date")
	metadataSetCmd.Flags().StringVar(&metaSubject, "subject", "", "append a subject/tag")
	metadataSetCmd.Flags().StringArrayVar(&metaCustom, "custom", nil, "set a custom property (format: name=value), repeatable")

	metadataCmd.AddCommand(metadataShowCmd, metadataSetCmd, metadataRemoveCmd, metadataImportCmd, metadataExportCmd)
	rootCmd.AddCommand(metadataCmd)
}

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Show or modify an EPUB's metadata",
}

var metadataShowCmd = &cobra.Command{
	Use:   "show <input.epub>",
	Short: "Print the book's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := openBook(args[0])
		if err != nil {
			return err
		}
		return printBookInfo(book)
	},
}

var metadataSetCmd = &cobra.Command{
	Use:   "set <input.epub>",
	Short: "Set one or more metadata fields in place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := map[string]string{
			"title":       metaTitle,
			"creator":     metaAuthor,
			"language":    metaLanguage,
			"publisher":   metaPublisher,
			"description": metaDescription,
			"rights":      metaRights,
			"identifier":  metaIdentifier,
			"date":        metaDate,
			"subject":     metaSubject,
		}
		for name := range fields {
			if fields[name] == "" {
				delete(fields, name)
			}
		}
		custom := map[string]string{}
		for _, kv := range metaCustom {
			name, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("%w: --custom expects name=value, got %q", epub.ErrInvalidArgument, kv)
			}
			custom[name] = value
		}
		if len(fields) == 0 && len(custom) == 0 {
			return fmt.Errorf("%w: no fields given to set", epub.ErrInvalidArgument)
		}

		err := editops.ModifyEPUB(args[0], func(book *epub.Book) error {
			for name, value := range fields {
				editops.SetField(book.Package, name, value)
			}
			for name, value := range custom {
				editops.SetField(book.Package, name, value)
			}
			return nil
		})
		if err != nil {
			return err
		}
		printSuccess("Updated metadata in %s", args[0])
		return nil
	},
}

var metadataRemoveCmd = &cobra.Command{
	Use:   "remove <input.epub> <field>...",
	Short: "Clear one or more named metadata fields",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := editops.ModifyEPUB(args[0], func(book *epub.Book) error {
			for _, field := range args[1:] {
				editops.RemoveField(book.Package, field)
			}
			return nil
		})
		if err != nil {
			return err
		}
		printSuccess("Removed %d field(s) from %s", len(args[1:]), args[0])
		return nil
	},
}

var metadataImportCmd = &cobra.Command{
	Use:   "import <input.epub> <metadata.yml>",
	Short: "Replace the book's metadata wholesale from a YAML file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := editops.ModifyEPUB(args[0], func(book *epub.Book) error {
			return editops.ImportMetadata(book.Package, args[1])
		})
		if err != nil {
			return err
		}
		printSuccess("Imported metadata from %s into %s", args[1], args[0])
		return nil
	},
}

var metadataExportCmd = &cobra.Command{
	Use:   "export <input.epub> <metadata.yml>",
	Short: "Write the book's metadata to a YAML file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := openBook(args[0])
		if err != nil {
			return err
		}
		if err := editops.ExportMetadata(book.Package, args[1]); err != nil {
			return err
		}
		printSuccess("Exported metadata from %s to %s", args[0], args[1])
		return nil
	},
}
