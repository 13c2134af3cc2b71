package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Every resource command renders either a dedicated JSON struct (--json)
// or a human-readable table/summary, and respects --quiet/--verbose/--no-color
// the same way across resources.
var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
)

// printJSON encodes v as 2-space-indented JSON to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printSuccess reports a completed write operation; suppressed by --quiet.
func printSuccess(format string, args ...interface{}) {
	if flagQuiet {
		return
	}
	successColor.Fprintf(os.Stdout, format+"\n", args...)
}

// printLine writes a plain informational line; suppressed by --quiet.
func printLine(format string, args ...interface{}) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// printVerbose writes a diagnostic line to stderr only with --verbose.
func printVerbose(format string, args ...interface{}) {
	if !flagVerbose {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// printWarn writes a warning line to stderr, always shown (warnings are
// not "non-essential output" in the --quiet sense).
func printWarn(format string, args ...interface{}) {
	warnColor.Fprintf(os.Stderr, format+"\n", args...)
}
