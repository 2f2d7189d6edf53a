// SPDX-License-Identifier: MPL-2.0

package bakefile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidImageRef is the sentinel error wrapped by InvalidImageRefError.
var ErrInvalidImageRef = errors.New("invalid image reference")

type (
	// ImageRef is a container image reference (registry/name:tag or a bare
	// name). Resolution is the container tool's job; ocibake only rejects
	// values the tool could never accept.
	ImageRef string

	// InvalidImageRefError is returned when an ImageRef is empty or contains
	// whitespace.
	InvalidImageRefError struct {
		Value ImageRef
	}
)

// Error implements the error interface.
func (e *InvalidImageRefError) Error() string {
	return fmt.Sprintf("invalid image reference %q: must be non-empty without whitespace", e.Value)
}

// Unwrap returns ErrInvalidImageRef so callers can use errors.Is for
// programmatic detection.
func (e *InvalidImageRefError) Unwrap() error { return ErrInvalidImageRef }

// String returns the string representation of the ImageRef.
func (r ImageRef) String() string { return string(r) }

// Validate returns an error if the ImageRef is empty or contains whitespace.
func (r ImageRef) Validate() error {
	s := string(r)
	if strings.TrimSpace(s) == "" || strings.ContainsAny(s, " \t\n") {
		return &InvalidImageRefError{Value: r}
	}
	return nil
}
