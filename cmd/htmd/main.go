// Package main is the entry point for the htmd CLI.
package main

import (
	"os"

	"github.com/jmylchreest/htmd/cmd/htmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
