// Package main is the entry point for workbench.
package main

import (
	"fmt"
	"os"

	"github.com/kurobon/workbench/cmd/workbench/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
