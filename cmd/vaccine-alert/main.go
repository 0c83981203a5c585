// Package main is the entry point for vaccine-alert.
package main

import (
	"os"

	"github.com/donaldgifford/vaccine-alert/cmd/vaccine-alert/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
