// Package main is the entry point for the captureplane CLI.
// The CLI is the terminal tool for interacting with the captureplane API.
package main

import (
	"os"

	"captureplane/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
