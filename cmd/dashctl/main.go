// Package main provides the dashctl command line tool for checking and
// converting course spreadsheets offline.
package main

import (
	"fmt"
	"os"

	"github.com/noah-isme/capstone-dashboard-api/cmd/dashctl/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
