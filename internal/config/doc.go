// SPDX-License-Identifier: MPL-2.0

// Package config loads and validates the ocibake tool configuration.
//
// Configuration lives in a CUE file at the platform config directory
// (e.g. $XDG_CONFIG_HOME/ocibake/config.cue on Linux) and is validated
// against an embedded #Config schema before being merged into Viper.
// All fields are optional; missing values fall back to defaults.
package config
