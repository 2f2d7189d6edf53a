// SPDX-License-Identifier: MPL-2.0

package bakefile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidUserSpec is the sentinel error wrapped by InvalidUserSpecError.
var ErrInvalidUserSpec = errors.New("invalid user spec")

type (
	// UserSpec is the numeric "uid:gid" (or bare "uid") the committed image
	// runs as. The zero value ("") means "inherit from the base image".
	UserSpec string

	// InvalidUserSpecError is returned when a UserSpec is not numeric
	// uid[:gid].
	InvalidUserSpecError struct {
		Value UserSpec
	}
)

// Error implements the error interface.
func (e *InvalidUserSpecError) Error() string {
	return fmt.Sprintf("invalid user spec %q: must be numeric uid or uid:gid", e.Value)
}

// Unwrap returns ErrInvalidUserSpec so callers can use errors.Is for
// programmatic detection.
func (e *InvalidUserSpecError) Unwrap() error { return ErrInvalidUserSpec }

// String returns the string representation of the UserSpec.
func (u UserSpec) String() string { return string(u) }

// Validate returns an error if the UserSpec is not numeric uid[:gid].
// The zero value ("") is valid and means no user is configured.
func (u UserSpec) Validate() error {
	if u == "" {
		return nil
	}

	parts := strings.Split(string(u), ":")
	if len(parts) > 2 {
		return &InvalidUserSpecError{Value: u}
	}
	for _, p := range parts {
		if _, err := strconv.ParseUint(p, 10, 32); err != nil {
			return &InvalidUserSpecError{Value: u}
		}
	}
	return nil
}

// UID returns the numeric user ID. Validate must have passed.
func (u UserSpec) UID() uint32 {
	uid, _ := strconv.ParseUint(strings.SplitN(string(u), ":", 2)[0], 10, 32)
	return uint32(uid)
}

// GID returns the numeric group ID and whether one was specified.
func (u UserSpec) GID() (uint32, bool) {
	parts := strings.SplitN(string(u), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	gid, _ := strconv.ParseUint(parts[1], 10, 32)
	return uint32(gid), true
}
