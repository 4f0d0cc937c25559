// Package utils contains utility functions for the orderpace daemon.
package utils

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	logoStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	taglineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// DisplayLogo prints the orderpace banner with version information
func DisplayLogo(version string) {
	fmt.Println()
	fmt.Println(logoStyle.Render(` ░█▀█░█▀▄░█▀▄░█▀▀░█▀▄░█▀█░█▀█░█▀▀░█▀▀
 ░█░█░█▀▄░█░█░█▀▀░█▀▄░█▀▀░█▀█░█░░░█▀▀
 ░▀▀▀░▀░▀░▀▀░░▀▀▀░▀░▀░▀░░░▀░▀░▀▀▀░▀▀▀`))
	fmt.Printf("\n orderpace v%s\n", version)
	fmt.Println(taglineStyle.Render(" Paced order replay for Shopify stores"))
	fmt.Println()
}
