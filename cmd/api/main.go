package main

import (
	"fmt"
	"os"

	"github.com/watchlog/core/cmd/api/commands"
)

func main() {
	rootCmd := commands.NewRootCommand()

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", commands.FormatError(err))
		os.Exit(1)
	}
}
