// Command hashtree computes hash tree roots, layers and inclusion proofs
// for lists of items read from a file or standard input.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr, os.LookupEnv)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)

		code := 1
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			code = ec.ExitCode()
		}
		os.Exit(code)
	}
}
