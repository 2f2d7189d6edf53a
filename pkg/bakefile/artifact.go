// SPDX-License-Identifier: MPL-2.0

package bakefile

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

var (
	// ErrInvalidSourcePath is the sentinel error wrapped by InvalidSourcePathError.
	ErrInvalidSourcePath = errors.New("invalid source path")

	// ErrInvalidDestPath is the sentinel error wrapped by InvalidDestPathError.
	ErrInvalidDestPath = errors.New("invalid destination path")

	// ErrInvalidFileMode is the sentinel error wrapped by InvalidFileModeError.
	ErrInvalidFileMode = errors.New("invalid file mode")

	// ErrInvalidArtifact is the sentinel error wrapped by InvalidArtifactError.
	ErrInvalidArtifact = errors.New("invalid artifact")
)

type (
	// SourcePath is a host filesystem path to a prebuilt artifact. It is a
	// read-only input: ocibake never creates or modifies it.
	SourcePath string

	// InvalidSourcePathError is returned when a SourcePath is empty or
	// whitespace-only.
	InvalidSourcePathError struct {
		Value SourcePath
	}

	// DestPath is an absolute path inside the image's root filesystem where
	// an artifact is placed.
	DestPath string

	// InvalidDestPathError is returned when a DestPath is not absolute.
	InvalidDestPathError struct {
		Value DestPath
	}

	// InvalidFileModeError is returned when an artifact mode string is not a
	// parseable octal mode.
	InvalidFileModeError struct {
		Value string
	}

	// Artifact describes one file to embed: a host source, an in-image
	// destination, and an optional octal mode. When Mode is empty the source
	// file's permissions are preserved.
	Artifact struct {
		Source SourcePath `json:"source" toml:"source"`
		Dest   DestPath   `json:"dest"   toml:"dest"`
		Mode   string     `json:"mode,omitempty" toml:"mode,omitempty"`
	}

	// InvalidArtifactError is returned when an Artifact has one or more
	// invalid fields. It wraps the individual field errors for inspection.
	InvalidArtifactError struct {
		Value     Artifact
		FieldErrs []error
	}
)

// Error implements the error interface.
func (e *InvalidSourcePathError) Error() string {
	return fmt.Sprintf("invalid source path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidSourcePath for errors.Is compatibility.
func (e *InvalidSourcePathError) Unwrap() error { return ErrInvalidSourcePath }

// String returns the string representation of the SourcePath.
func (p SourcePath) String() string { return string(p) }

// Validate returns an error if the SourcePath is empty or whitespace-only.
func (p SourcePath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidSourcePathError{Value: p}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidDestPathError) Error() string {
	return fmt.Sprintf("invalid destination path %q: must be absolute", e.Value)
}

// Unwrap returns ErrInvalidDestPath for errors.Is compatibility.
func (e *InvalidDestPathError) Unwrap() error { return ErrInvalidDestPath }

// String returns the string representation of the DestPath.
func (p DestPath) String() string { return string(p) }

// Validate returns an error if the DestPath is not an absolute path below
// the image root.
func (p DestPath) Validate() error {
	if !strings.HasPrefix(string(p), "/") || string(p) == "/" {
		return &InvalidDestPathError{Value: p}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidFileModeError) Error() string {
	return fmt.Sprintf("invalid file mode %q: must be octal (e.g. 0755)", e.Value)
}

// Unwrap returns ErrInvalidFileMode for errors.Is compatibility.
func (e *InvalidFileModeError) Unwrap() error { return ErrInvalidFileMode }

// Error implements the error interface.
func (e *InvalidArtifactError) Error() string {
	return fmt.Sprintf("invalid artifact %s -> %s: %d field error(s)",
		e.Value.Source, e.Value.Dest, len(e.FieldErrs))
}

// Unwrap returns ErrInvalidArtifact for errors.Is compatibility.
func (e *InvalidArtifactError) Unwrap() error { return ErrInvalidArtifact }

// Validate returns an error if any field of the Artifact is invalid.
func (a Artifact) Validate() error {
	var errs []error
	if err := a.Source.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := a.Dest.Validate(); err != nil {
		errs = append(errs, err)
	}
	if a.Mode != "" {
		if _, err := a.FileMode(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &InvalidArtifactError{Value: a, FieldErrs: errs}
	}
	return nil
}

// FileMode parses the optional octal mode string. A zero mode means no mode
// was specified and the source file's permissions should be preserved.
func (a Artifact) FileMode() (fs.FileMode, error) {
	if a.Mode == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(a.Mode, 8, 32)
	if err != nil || n > 0o7777 {
		return 0, &InvalidFileModeError{Value: a.Mode}
	}
	return fs.FileMode(n), nil
}

// String returns the artifact in "source -> dest" form for logs.
func (a Artifact) String() string {
	return string(a.Source) + " -> " + string(a.Dest)
}

// ParseArtifact parses a "source:dest[:mode]" flag value into an Artifact.
// After parsing, the result is validated via Artifact.Validate().
func ParseArtifact(spec string) (Artifact, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Artifact{}, fmt.Errorf("invalid artifact spec %q: must be source:dest[:mode]", spec)
	}

	a := Artifact{
		Source: SourcePath(parts[0]),
		Dest:   DestPath(parts[1]),
	}
	if len(parts) == 3 {
		a.Mode = parts[2]
	}

	if err := a.Validate(); err != nil {
		return a, err
	}
	return a, nil
}
