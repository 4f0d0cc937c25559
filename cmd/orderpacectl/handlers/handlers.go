// Package handlers provides command handler functions for orderpacectl.
//
// Each handler is a cobra RunE function: it sets up logging, calls the daemon
// through the client package and hands the response to the display package.
// Task arguments accept full ids or the short ids shown by "ls".
package handlers

import (
	"github.com/concave-dev/orderpace/cmd/orderpacectl/client"
	"github.com/concave-dev/orderpace/cmd/orderpacectl/utils"
)

// newClient is replaced in tests
var newClient = client.CreateAPIClient

// resolveTask turns a full or partial id argument into a full task id
func resolveTask(api *client.OrderpaceAPIClient, arg string) (string, error) {
	return utils.ResolveTaskIdentifier(api, arg)
}
