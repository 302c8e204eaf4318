// Package main provides the entry point for redmod-cli.
//
// redmod-cli sends a single command when given arguments and starts an
// interactive prompt otherwise:
//
//	redmod-cli -p 6380 set greeting hello
//	redmod-cli -o json mget a b c
//	redmod-cli subscribe news
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/redmod-go/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
