// Package main is the entry point for the duckproj CLI binary.
package main

import (
	"os"

	"duck-projection/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
