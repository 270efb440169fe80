// Command zkpauthd runs the zero-knowledge authentication server.
package main

import (
	"fmt"
	"os"

	"github.com/nsheremet/zkpauth/cmd/zkpauthd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
