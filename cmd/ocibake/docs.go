// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	_ "embed"
	"fmt"

	"ocibake/internal/config"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed manual.md
var manualMarkdown string

// docsCmd renders the embedded manual.
var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Show the ocibake manual",
	Long:  "Render the built-in manual covering recipes, the build sequence, and configuration.",
	RunE: func(cmd *cobra.Command, args []string) error {
		style := glamour.WithAutoStyle()
		switch currentConfig().UI.ColorScheme {
		case config.ColorSchemeDark:
			style = glamour.WithStandardStyle("dark")
		case config.ColorSchemeLight:
			style = glamour.WithStandardStyle("light")
		}

		renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
		if err != nil {
			// Fall back to the raw markdown rather than failing the command.
			fmt.Print(manualMarkdown)
			return nil
		}

		rendered, err := renderer.Render(manualMarkdown)
		if err != nil {
			fmt.Print(manualMarkdown)
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
