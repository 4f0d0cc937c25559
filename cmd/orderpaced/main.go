// Package main implements the orderpace daemon (orderpaced).
package main

import (
	"context"
	"os"

	"github.com/concave-dev/orderpace/cmd/orderpaced/commands"
)

func init() {
	commands.SetupCommands()
}

func main() {
	if err := commands.RootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
