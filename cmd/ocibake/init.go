// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"ocibake/pkg/bakefile"

	"github.com/spf13/cobra"
)

var (
	initForce bool

	// initCmd creates a new bakefile
	initCmd = &cobra.Command{
		Use:   "init [filename]",
		Short: "Create a new bakefile in the current directory",
		Long: `Create a new bakefile in the current directory.

This command generates a starter bakefile.cue populated with the default
recipe so you can edit it instead of starting from scratch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing bakefile")
}

func runInit(cmd *cobra.Command, args []string) error {
	filename := "bakefile.cue"
	if len(args) > 0 {
		filename = args[0]
	}

	// Check if file exists
	if _, err := os.Stat(filename); err == nil && !initForce {
		return fmt.Errorf("file '%s' already exists. Use --force to overwrite", filename)
	}

	if err := os.WriteFile(filename, []byte(bakefile.Starter()), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), absPath)
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	fmt.Println("  1. Edit the bakefile: base image, artifacts, entrypoint")
	fmt.Println("  2. Run 'ocibake build' to bake the image")

	return nil
}
