// SPDX-License-Identifier: MPL-2.0

package builder

import "fmt"

// Step identifies a stage of the build sequence. It is carried by StepError
// so callers can tell which stage failed without parsing error text.
type Step string

const (
	// StepResolve creates the working container from the base image
	// (includes resolving and pulling the image).
	StepResolve Step = "resolve"
	// StepMount mounts the working container's root filesystem.
	StepMount Step = "mount"
	// StepCopy copies an artifact into the mounted filesystem.
	StepCopy Step = "copy"
	// StepConfigure sets entrypoint and user metadata.
	StepConfigure Step = "configure"
	// StepCommit commits the working container as the target image.
	StepCommit Step = "commit"
	// StepUnmount unmounts the working container's root filesystem.
	StepUnmount Step = "unmount"
	// StepRemove removes the working container.
	StepRemove Step = "remove"
	// StepVerify inspects the committed image and checks its metadata.
	StepVerify Step = "verify"
)

// String returns the step name.
func (s Step) String() string { return string(s) }

// StepError wraps a failure with the build step it occurred in.
type StepError struct {
	// Step is the stage that failed.
	Step Step
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("build step %q failed: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As traversal.
func (e *StepError) Unwrap() error { return e.Err }

// stepError wraps err in a StepError unless it is nil.
func stepError(step Step, err error) error {
	if err == nil {
		return nil
	}
	return &StepError{Step: step, Err: err}
}
