// Command placer recommends a SQL, document or dual placement for every
// field of a JSON record stream.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/placer/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
