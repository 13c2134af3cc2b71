// Command epx converts EPUB publications to and from an editable
// Markdown/YAML source tree, and applies surgical edits to existing
// EPUBs without a full round trip.
package main

import "epx/cmd/epx/commands"

func main() {
	commands.Execute()
}
