// Command clawguard is the ClawGuard CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/gzhole/clawguard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
