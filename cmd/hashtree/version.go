package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/urfave/cli/v2"
)

// Populated during build with -ldflags.
var (
	Version   = "v0.1.0"
	GitRev    = "undefined"
	BuildDate = "undefined"
)

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Version:      %s\n"+
		"Git revision: %s\n"+
		"Go version:   %s\n"+
		"Built:        %s\n"+
		"OS/Arch:      %s/%s\n",
		Version, GitRev, runtime.Version(), BuildDate, runtime.GOOS, runtime.GOARCH)
}

func versionCmd(cCtx *cli.Context) error {
	printVersion(cCtx.App.Writer)
	return nil
}
