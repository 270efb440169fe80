// Command zkpauthctl is a demonstration client for zkpauthd: it derives
// a secret scalar from a password, registers the corresponding
// commitments, and runs the challenge/response exchange to obtain a
// session token. It is a harness for exercising the protocol end to
// end, not a hardened credential manager — it never stores anything to
// disk.
package main

import (
	"fmt"
	"os"

	"github.com/nsheremet/zkpauth/cmd/zkpauthctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
