// Command icscheck validates Instruction Context Standard instructions.
package main

import "github.com/ppiankov/icscheck/internal/cli"

func main() {
	cli.Execute()
}
