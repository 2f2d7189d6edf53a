// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"testing"

	"ocibake/internal/issue"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev fallback", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		got := getVersionString()
		want := "dev (built from source)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestFormatErrorForDisplay(t *testing.T) {
	t.Parallel()

	t.Run("plain error uses Error()", func(t *testing.T) {
		t.Parallel()

		err := errors.New("something broke")
		if got := formatErrorForDisplay(err, false); got != "something broke" {
			t.Errorf("formatErrorForDisplay() = %q, want %q", got, "something broke")
		}
	})

	t.Run("actionable error uses Format", func(t *testing.T) {
		t.Parallel()

		err := issue.NewErrorContext().
			WithOperation("pulling base image").
			WithSuggestion("check network connectivity").
			Wrap(errors.New("lookup failed")).
			BuildError()

		got := formatErrorForDisplay(err, false)
		if got == "" {
			t.Fatal("formatErrorForDisplay() returned empty string")
		}
		// Format output includes the suggestion, plain Error() would not.
		if got == err.Error() {
			t.Errorf("formatErrorForDisplay() = plain Error() output, want formatted suggestions")
		}
	})
}

func TestExitError(t *testing.T) {
	t.Parallel()

	wrapped := errors.New("build failed")
	err := &ExitError{Code: 1, Err: wrapped}

	if err.Error() != "build failed" {
		t.Errorf("Error() = %q, want %q", err.Error(), "build failed")
	}
	if !errors.Is(err, wrapped) {
		t.Error("errors.Is(err, wrapped) = false, want true")
	}

	bare := &ExitError{Code: 3}
	if bare.Error() != "exit status 3" {
		t.Errorf("Error() = %q, want %q", bare.Error(), "exit status 3")
	}
}
