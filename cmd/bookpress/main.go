// Command bookpress builds book manuscripts from ordered Markdown units
// into print-ready PDFs.
package main

import (
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is stamped at build time via -ldflags "-X main.Version=v1.2.3".
var Version = "dev"

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(nil))
	os.Exit(run(os.Args[1:], DefaultEnv()))
}
