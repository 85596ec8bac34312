package main

import (
	"os"
)

var (
	// Version is the current version of the lexwalk binary, set at build time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
