package commands

import (
	"fmt"
	"strconv"

	"epx/epub"
	"epx/internal/editops"

	"github.com/spf13/cobra"
)

func init() {
	spineCmd.AddCommand(spineListCmd, spineReorderCmd, spineSetCmd)
	rootCmd.AddCommand(spineCmd)
}

var spineCmd = &cobra.Command{
	Use:   "spine",
	Short: "List, reorder, or replace the reading-order spine",
}

var spineListCmd = &cobra.Command{
	Use:   "list <input.epub>",
	Short: "List the spine's idrefs in reading order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := openBook(args[0])
		if err != nil {
			return err
		}
		idrefs := make([]string, len(book.Package.Spine.ItemRefs))
		for i, ref := range book.Package.Spine.ItemRefs {
			idrefs[i] = ref.IDRef
		}
		if flagJSON {
			return printJSON(idrefs)
		}
		for i, idref := range idrefs {
			printLine("%2d  %s", i, idref)
		}
		return nil
	},
}

var spineReorderCmd = &cobra.Command{
	Use:   "reorder <input.epub> <from-index> <to-index>",
	Short: "Move a spine item to a new position",
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
			return editops.ReorderSpine(book, from, to)
		})
		if err != nil {
			return err
		}
		printSuccess("Moved spine item %d to position %d in %s", from, to, args[0])
		return nil
	},
}

var spineSetCmd = &cobra.Command{
	Use:   "set <input.epub> <idref>...",
	Short: "Replace the spine's order wholesale",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		idrefs := args[1:]
		err := editops.ModifyEPUB(args[0], func(book *epub.Book) error {
			return editops.SetSpineOrder(book, idrefs)
		})
		if err != nil {
			return err
		}
		printSuccess("Set spine order (%d item(s)) in %s", len(idrefs), args[0])
		return nil
	},
}
