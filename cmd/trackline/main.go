// Package main provides the entry point for the trackline CLI.
package main

import (
	"os"

	"github.com/trackline/trackline/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
