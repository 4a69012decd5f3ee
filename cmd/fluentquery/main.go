// Package main is the entry point for the fluentquery CLI.
package main

import (
	"fmt"
	"os"

	"github.com/satishbabariya/fluent-query-go/cmd/fluentquery/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
