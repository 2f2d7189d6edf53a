// SPDX-License-Identifier: MPL-2.0

package bakefile

import (
	"errors"
	"fmt"
)

const (
	// FormatDocker commits images in the Docker v2s2 manifest format.
	FormatDocker ImageFormat = "docker"
	// FormatOCI commits images in the OCI image format.
	FormatOCI ImageFormat = "oci"
)

// ErrInvalidImageFormat is the sentinel error wrapped by InvalidImageFormatError.
var ErrInvalidImageFormat = errors.New("invalid image format")

type (
	// ImageFormat selects the manifest format of the committed image.
	// The zero value ("") is valid and means "docker", matching the original
	// build recipe.
	ImageFormat string

	// InvalidImageFormatError is returned when an ImageFormat is not a
	// recognized format.
	InvalidImageFormatError struct {
		Value ImageFormat
	}
)

// Error implements the error interface.
func (e *InvalidImageFormatError) Error() string {
	return fmt.Sprintf("invalid image format %q (valid: docker, oci)", e.Value)
}

// Unwrap returns ErrInvalidImageFormat so callers can use errors.Is for
// programmatic detection.
func (e *InvalidImageFormatError) Unwrap() error { return ErrInvalidImageFormat }

// String returns the string representation of the ImageFormat.
func (f ImageFormat) String() string { return string(f) }

// Validate returns an error if the ImageFormat is not one of the defined
// formats. The zero value ("") is valid and is treated as FormatDocker.
func (f ImageFormat) Validate() error {
	switch f {
	case FormatDocker, FormatOCI, "":
		return nil
	default:
		return &InvalidImageFormatError{Value: f}
	}
}

// OrDefault returns the format itself, or FormatDocker for the zero value.
func (f ImageFormat) OrDefault() ImageFormat {
	if f == "" {
		return FormatDocker
	}
	return f
}
