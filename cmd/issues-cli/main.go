// Package main provides the entry point for issues-cli.
package main

import (
	"fmt"
	"os"

	"github.com/ericfisherdev/simple-easy-issues/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
