// SPDX-License-Identifier: MPL-2.0

package bakefile

import (
	"errors"
	"fmt"
)

// ErrInvalidBakefile is the sentinel error wrapped by InvalidBakefileError.
var ErrInvalidBakefile = errors.New("invalid bakefile")

type (
	// Bakefile is the complete build recipe: instantiate Base, embed
	// Artifacts, configure Entrypoint and User, and commit the result as
	// Image in Format.
	Bakefile struct {
		// Base is the image the working container is instantiated from.
		Base ImageRef `json:"base" toml:"base"`

		// Artifacts are the files copied into the mounted root filesystem,
		// in order.
		Artifacts []Artifact `json:"artifacts" toml:"artifacts"`

		// Entrypoint is the command the committed image runs by default.
		Entrypoint []string `json:"entrypoint" toml:"entrypoint"`

		// User is the numeric uid:gid the committed image runs as.
		User UserSpec `json:"user,omitempty" toml:"user,omitempty"`

		// Image is the name the committed image is stored under. Re-running
		// a build simply replaces the previous image of the same name.
		Image ImageRef `json:"image" toml:"image"`

		// Format is the manifest format of the committed image.
		Format ImageFormat `json:"format,omitempty" toml:"format,omitempty"`

		// FilePath records where the recipe was loaded from. Empty for
		// recipes assembled from flags or defaults.
		FilePath string `json:"-" toml:"-"`
	}

	// InvalidBakefileError aggregates all field validation errors of a
	// Bakefile.
	InvalidBakefileError struct {
		FieldErrs []error
	}
)

// Error implements the error interface.
func (e *InvalidBakefileError) Error() string {
	if len(e.FieldErrs) == 1 {
		return fmt.Sprintf("invalid bakefile: %v", e.FieldErrs[0])
	}
	return fmt.Sprintf("invalid bakefile: %d field error(s): %v",
		len(e.FieldErrs), errors.Join(e.FieldErrs...))
}

// Unwrap returns the individual field errors plus ErrInvalidBakefile so both
// errors.Is(err, ErrInvalidBakefile) and field-level errors.Is checks work.
func (e *InvalidBakefileError) Unwrap() []error {
	return append([]error{ErrInvalidBakefile}, e.FieldErrs...)
}

// Validate returns an error if any field of the Bakefile is invalid.
// A recipe must name a base image, a destination image, and at least one
// artifact to embed.
func (b *Bakefile) Validate() error {
	var errs []error

	if err := b.Base.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("base: %w", err))
	}
	if err := b.Image.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("image: %w", err))
	}
	if len(b.Artifacts) == 0 {
		errs = append(errs, errors.New("artifacts: at least one artifact is required"))
	}
	for i, a := range b.Artifacts {
		if err := a.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("artifacts[%d]: %w", i, err))
		}
	}
	if len(b.Entrypoint) == 0 {
		errs = append(errs, errors.New("entrypoint: must not be empty"))
	}
	for i, e := range b.Entrypoint {
		if e == "" {
			errs = append(errs, fmt.Errorf("entrypoint[%d]: must not be empty", i))
		}
	}
	if err := b.User.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("user: %w", err))
	}
	if err := b.Format.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("format: %w", err))
	}

	if len(errs) > 0 {
		return &InvalidBakefileError{FieldErrs: errs}
	}
	return nil
}
