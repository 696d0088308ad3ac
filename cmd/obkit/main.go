// Package main is the entry point for obkit CLI
package main

import (
	"fmt"
	"os"

	"github.com/sirosfoundation/obkit/cmd/obkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
