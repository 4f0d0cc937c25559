// Package main provides the entry point for the orderpace CLI (orderpacectl).
package main

import (
	"os"

	"github.com/concave-dev/orderpace/cmd/orderpacectl/commands"
	"github.com/concave-dev/orderpace/cmd/orderpacectl/config"
	"github.com/concave-dev/orderpace/cmd/orderpacectl/handlers"
)

func init() {
	rootCmd := commands.RootCmd

	rootCmd.Version = config.Version
	rootCmd.PersistentPreRunE = config.ValidateGlobalFlags

	commands.SetupCommands()

	commands.SetupGlobalFlags(rootCmd, &config.Global.APIAddr, &config.Global.LogLevel,
		&config.Global.Timeout, &config.Global.Verbose, &config.Global.Output, config.DefaultAPIAddr)

	submitCmd, lsCmd, statusCmd, cancelCmd, downloadCmd, variantCmd, infoCmd := commands.GetTaskCommands()

	commands.SetupSubmitFlags(submitCmd, &config.Submit.VariantID, &config.Submit.Store,
		&config.Submit.AccessToken, &config.Submit.EndTime, &config.Submit.Watch)
	commands.SetupTaskFlags(lsCmd, statusCmd, downloadCmd,
		&config.Task.Watch, &config.Task.StatusFilter, &config.Download.OutFile)

	submitCmd.RunE = handlers.HandleSubmit
	lsCmd.RunE = handlers.HandleList
	statusCmd.RunE = handlers.HandleStatus
	cancelCmd.RunE = handlers.HandleCancel
	downloadCmd.RunE = handlers.HandleDownload
	variantCmd.RunE = handlers.HandleVariant
	infoCmd.RunE = handlers.HandleInfo
}

func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
