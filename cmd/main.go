// Package main is the entry point for the silentsignal CLI.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Use plain stderr: the logger may not be initialized yet.
		os.Stderr.WriteString("silentsignal: " + err.Error() + "\n")
		os.Exit(1)
	}
}
