package commands

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	flagJSON    bool
	flagVerbose bool
	flagQuiet   bool
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "epx",
	Short: "epx converts EPUB publications to and from an editable Markdown/YAML tree",
	Long: `epx performs a lossless round trip between the EPUB 2/3 publication
format and an opinionated directory of Markdown, YAML, and assets. It also
applies surgical edits (metadata, spine, table of contents, chapters,
assets, content) directly to an existing EPUB via read-modify-write.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output machine-readable JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose diagnostic output")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
}

// Execute runs the root command, exiting the process with a nonzero code
// on any fatal error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	errorColor.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
