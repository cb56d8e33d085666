// Command tigo-mcp-server exposes Tigo Energy solar monitoring to MCP
// clients and the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/matt-dreyer/Tigo-MCP-server/cli"
	"github.com/morikuni/failure/v2"
)

func main() {
	if err := cli.Run(); err != nil {
		var userMessage string
		if fmsg := failure.MessageOf(err); fmsg != "" {
			userMessage = fmsg.String()
		} else {
			userMessage = err.Error()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", userMessage)
		os.Exit(1)
	}
}
