// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for ocibake.
//
// This package implements the Cobra command hierarchy: the root command,
// the build command that bakes a recipe into an image, and supporting
// subcommands for recipe scaffolding, configuration, and engine discovery.
package cmd
