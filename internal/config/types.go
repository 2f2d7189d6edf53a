// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	// EngineAuto picks the first available engine (buildah, then podman).
	EngineAuto EnginePreference = "auto"
	// EngineBuildah forces the buildah CLI engine.
	EngineBuildah EnginePreference = "buildah"
	// EnginePodman forces the podman CLI engine.
	EnginePodman EnginePreference = "podman"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// maxPullAttempts bounds the pull retry budget so a bad config value
	// cannot make the build loop effectively forever.
	maxPullAttempts = 10
)

var (
	// ErrInvalidEnginePreference is returned when an EnginePreference value is not recognized.
	ErrInvalidEnginePreference = errors.New("invalid engine preference")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidBackoff is returned when a Backoff value cannot be parsed as a duration.
	ErrInvalidBackoff = errors.New("invalid backoff duration")
	// ErrInvalidPullConfig is the sentinel error wrapped by InvalidPullConfigError.
	ErrInvalidPullConfig = errors.New("invalid pull config")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// EnginePreference selects which container engine the builder should use.
	EnginePreference string

	// InvalidEnginePreferenceError is returned when an EnginePreference value
	// is not recognized. It wraps ErrInvalidEnginePreference for errors.Is().
	InvalidEnginePreferenceError struct {
		Value EnginePreference
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not
	// recognized. It wraps ErrInvalidColorScheme for errors.Is().
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// Backoff is a Go duration string (e.g. "2s", "500ms") controlling the
	// base delay between pull retries. The zero value ("") is valid and
	// means "use the default backoff".
	Backoff string

	// InvalidBackoffError is returned when a Backoff value is non-empty but
	// does not parse as a positive duration.
	InvalidBackoffError struct {
		Value Backoff
	}

	// InvalidPullConfigError is returned when a PullConfig has invalid fields.
	// It wraps ErrInvalidPullConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidPullConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the tool configuration.
	Config struct {
		// Engine selects the container engine: "auto", "buildah" or "podman".
		Engine EnginePreference `json:"engine" mapstructure:"engine"`
		// CleanupOnFailure removes the working container when a build fails.
		// Disable to keep the container around for inspection.
		CleanupOnFailure bool `json:"cleanup_on_failure" mapstructure:"cleanup_on_failure"`
		// Pull configures base-image pull retry behavior.
		Pull PullConfig `json:"pull" mapstructure:"pull"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// PullConfig controls retry behavior when pulling the base image.
	// Only the pull is retried; every later build step fails fast.
	PullConfig struct {
		// Attempts is the maximum number of pull attempts (including the first).
		Attempts int `json:"attempts" mapstructure:"attempts"`
		// Backoff is the base delay between attempts, doubled each retry.
		Backoff Backoff `json:"backoff" mapstructure:"backoff"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the EnginePreference.
func (p EnginePreference) String() string { return string(p) }

// IsValid returns whether the EnginePreference is one of the defined values,
// and a list of validation errors if it is not.
func (p EnginePreference) IsValid() (bool, []error) {
	switch p {
	case EngineAuto, EngineBuildah, EnginePodman:
		return true, nil
	default:
		return false, []error{&InvalidEnginePreferenceError{Value: p}}
	}
}

// Error implements the error interface for InvalidEnginePreferenceError.
func (e *InvalidEnginePreferenceError) Error() string {
	return fmt.Sprintf("invalid engine preference %q (valid: auto, buildah, podman)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidEnginePreferenceError) Unwrap() error {
	return ErrInvalidEnginePreference
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the Backoff.
func (b Backoff) String() string { return string(b) }

// Duration parses the backoff as a time.Duration, falling back to def when
// the value is empty. Callers should validate first; a malformed value
// returns def.
func (b Backoff) Duration(def time.Duration) time.Duration {
	if b == "" {
		return def
	}
	d, err := time.ParseDuration(string(b))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// IsValid returns whether the Backoff is valid.
// The zero value ("") is valid. Non-empty values must parse as a positive
// Go duration.
func (b Backoff) IsValid() (bool, []error) {
	if b == "" {
		return true, nil
	}
	d, err := time.ParseDuration(string(b))
	if err != nil || d <= 0 {
		return false, []error{&InvalidBackoffError{Value: b}}
	}
	return true, nil
}

// Error implements the error interface for InvalidBackoffError.
func (e *InvalidBackoffError) Error() string {
	return fmt.Sprintf("invalid backoff duration %q: must be a positive Go duration (e.g. \"2s\")", e.Value)
}

// Unwrap returns ErrInvalidBackoff for errors.Is() compatibility.
func (e *InvalidBackoffError) Unwrap() error { return ErrInvalidBackoff }

// IsValid returns whether the PullConfig has valid fields.
// Attempts must be between 1 and 10; Backoff must parse as a duration.
func (c PullConfig) IsValid() (bool, []error) {
	var errs []error
	if c.Attempts < 1 || c.Attempts > maxPullAttempts {
		errs = append(errs, fmt.Errorf("%w: attempts must be between 1 and %d, got %d",
			ErrInvalidPullConfig, maxPullAttempts, c.Attempts))
	}
	if valid, fieldErrs := c.Backoff.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidPullConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPullConfigError.
func (e *InvalidPullConfigError) Error() string {
	return fmt.Sprintf("invalid pull config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidPullConfig for errors.Is() compatibility.
func (e *InvalidPullConfigError) Unwrap() error { return ErrInvalidPullConfig }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to Engine.IsValid(), Pull.IsValid() and UI.IsValid().
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Engine.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Pull.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine:           EngineAuto,
		CleanupOnFailure: true,
		Pull: PullConfig{
			Attempts: 3,
			Backoff:  "2s",
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
