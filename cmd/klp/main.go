// Package main is the entry point for the klp server and admin CLI.
package main

import (
	"fmt"
	"os"

	"github.com/kinglemuel/klp/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
