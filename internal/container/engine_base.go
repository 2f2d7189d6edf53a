// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"ocibake/internal/issue"
	"ocibake/pkg/bakefile"
)

var (
	// ErrInvalidContainerID is the sentinel error wrapped by InvalidContainerIDError.
	ErrInvalidContainerID = errors.New("invalid container ID")

	// ErrInvalidMountPoint is the sentinel error wrapped by InvalidMountPointError.
	ErrInvalidMountPoint = errors.New("invalid mount point")

	// ErrDestEscapesMount is returned when an artifact destination resolves
	// outside the mounted root filesystem.
	ErrDestEscapesMount = errors.New("destination escapes mount point")
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine provides common implementation for CLI-based container engines.
	// Buildah and Podman engines embed this struct. Methods that are identical
	// across all CLI engines (CopyInto, Remove, RemoveImage, command execution)
	// are implemented here; engine-specific methods (From, Mount, Configure,
	// Commit) remain on the concrete types because the verbs differ.
	BaseCLIEngine struct {
		name        string // Engine name for error messages (e.g., "buildah", "podman")
		binaryPath  string // Resolved at construction via exec.LookPath; not user-configurable
		execCommand ExecCommandFunc
	}

	// ContainerID identifies a working container created by From.
	// A valid ID must be non-empty and not whitespace-only.
	ContainerID string

	// InvalidContainerIDError is returned when a ContainerID is empty or whitespace-only.
	InvalidContainerIDError struct {
		Value ContainerID
	}

	// MountPoint is the host filesystem path where a working container's root
	// filesystem is mounted. A valid mount point must be an absolute path.
	MountPoint string

	// InvalidMountPointError is returned when a MountPoint is empty or not absolute.
	InvalidMountPointError struct {
		Value MountPoint
	}
)

// String returns the string representation of the ContainerID.
func (c ContainerID) String() string { return string(c) }

// Validate returns an error if the ContainerID is invalid.
// A valid ID must be non-empty and not whitespace-only.
func (c ContainerID) Validate() error {
	if strings.TrimSpace(string(c)) == "" {
		return &InvalidContainerIDError{Value: c}
	}
	return nil
}

// Error implements the error interface for InvalidContainerIDError.
func (e *InvalidContainerIDError) Error() string {
	return fmt.Sprintf("invalid container ID %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidContainerID for errors.Is() compatibility.
func (e *InvalidContainerIDError) Unwrap() error { return ErrInvalidContainerID }

// String returns the string representation of the MountPoint.
func (m MountPoint) String() string { return string(m) }

// Validate returns an error if the MountPoint is invalid.
// A valid mount point must be an absolute path.
func (m MountPoint) Validate() error {
	if strings.TrimSpace(string(m)) == "" || !filepath.IsAbs(string(m)) {
		return &InvalidMountPointError{Value: m}
	}
	return nil
}

// Error implements the error interface for InvalidMountPointError.
func (e *InvalidMountPointError) Error() string {
	return fmt.Sprintf("invalid mount point %q: must be an absolute path", e.Value)
}

// Unwrap returns ErrInvalidMountPoint for errors.Is() compatibility.
func (e *InvalidMountPointError) Unwrap() error { return ErrInvalidMountPoint }

// --- Option Functions ---

// WithName sets the engine name used in error messages.
func WithName(name string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.name = name
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.execCommand = fn
	}
}

// --- Constructor ---

// NewBaseCLIEngine creates a new base engine with the given binary path.
func NewBaseCLIEngine(binaryPath string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:  binaryPath,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// --- Accessor Methods ---

// Name returns the engine name used in error messages.
func (e *BaseCLIEngine) Name() string {
	return e.name
}

// BinaryPath returns the path to the container engine binary.
func (e *BaseCLIEngine) BinaryPath() string {
	return e.binaryPath
}

// --- Argument Builders ---

// FromArgs constructs arguments for creating a working container.
//
// Generated command: <binary> <verb> [options] <image>
// where verb is "from" for buildah and "create" for podman.
func (e *BaseCLIEngine) FromArgs(verb string, opts FromOptions) []string {
	args := []string{verb}

	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}

	if opts.QuietPull {
		args = append(args, "--quiet")
	}

	args = append(args, string(opts.Image))

	return args
}

// MountArgs constructs arguments for mounting a working container's rootfs.
func (e *BaseCLIEngine) MountArgs(containerID ContainerID) []string {
	return []string{"mount", string(containerID)}
}

// UnmountArgs constructs arguments for unmounting a working container's rootfs.
func (e *BaseCLIEngine) UnmountArgs(containerID ContainerID) []string {
	return []string{"umount", string(containerID)}
}

// CommitArgs constructs arguments for committing a working container.
//
// Generated command: <binary> commit [options] <container> <image>
func (e *BaseCLIEngine) CommitArgs(containerID ContainerID, opts CommitOptions, changes []string) []string {
	args := []string{"commit"}

	args = append(args, "--format", string(opts.Format.OrDefault()))

	if opts.Quiet {
		args = append(args, "--quiet")
	}

	for _, change := range changes {
		args = append(args, "--change", change)
	}

	args = append(args, string(containerID), string(opts.Image))

	return args
}

// RemoveArgs constructs arguments for a container remove command.
func (e *BaseCLIEngine) RemoveArgs(containerID ContainerID, force bool) []string {
	args := []string{"rm"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, string(containerID))
	return args
}

// RemoveImageArgs constructs arguments for an image remove command.
func (e *BaseCLIEngine) RemoveImageArgs(image bakefile.ImageRef, force bool) []string {
	args := []string{"rmi"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, string(image))
	return args
}

// EntrypointJSON renders an entrypoint in exec form (a JSON array) for
// buildah --entrypoint and podman --change ENTRYPOINT.
func EntrypointJSON(entrypoint []string) (string, error) {
	data, err := json.Marshal(entrypoint)
	if err != nil {
		return "", fmt.Errorf("failed to encode entrypoint: %w", err)
	}
	return string(data), nil
}

// --- Command Execution ---

// RunCommand executes a command and returns its output.
// This is the low-level execution method used by concrete engines.
func (e *BaseCLIEngine) RunCommand(ctx context.Context, args ...string) ([]byte, error) {
	cmd := e.CreateCommand(ctx, args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return out, nil
}

// RunCommandCombined executes a command and returns combined stdout/stderr.
func (e *BaseCLIEngine) RunCommandCombined(ctx context.Context, args ...string) ([]byte, error) {
	cmd := e.CreateCommand(ctx, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return out, nil
}

// RunCommandStatus executes a command and returns only the error status.
func (e *BaseCLIEngine) RunCommandStatus(ctx context.Context, args ...string) error {
	cmd := e.CreateCommand(ctx, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return nil
}

// RunCommandWithOutput executes a command with stdout captured to a buffer.
// Stderr is captured separately and included in the error on failure so the
// engine's diagnostic text survives into the error chain.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		if errOut.Len() > 0 {
			return "", fmt.Errorf("command %s %v failed: %s: %w",
				e.binaryPath, args, strings.TrimSpace(errOut.String()), err)
		}
		return "", fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}

	return out.String(), nil
}

// CreateCommand creates an exec.Cmd for the given arguments.
// This is useful when the caller needs to customize stdin/stdout/stderr.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	return e.execCommand(ctx, e.binaryPath, args...)
}

// --- Promoted Engine Methods (shared by buildah and podman) ---

// CopyInto copies a host artifact into the mounted root filesystem.
// The destination is resolved under the mount point with a guard against
// path traversal. Parent directories are created as needed. The file mode
// comes from the artifact when set, otherwise from the source file.
func (e *BaseCLIEngine) CopyInto(ctx context.Context, mountPoint MountPoint, artifact bakefile.Artifact) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("copy aborted: %w", ctx.Err())
	default:
	}

	if err := mountPoint.Validate(); err != nil {
		return err
	}
	if err := artifact.Validate(); err != nil {
		return err
	}

	dest, err := resolveDestPath(mountPoint, artifact.Dest)
	if err != nil {
		return err
	}

	srcInfo, err := os.Stat(string(artifact.Source))
	if err != nil {
		return copyArtifactError(artifact, fmt.Errorf("source not accessible: %w", err))
	}
	if srcInfo.IsDir() {
		return copyArtifactError(artifact, fmt.Errorf("source %q is a directory, expected a file", artifact.Source))
	}

	mode := srcInfo.Mode().Perm()
	if artifactMode, err := artifact.FileMode(); err != nil {
		return err
	} else if artifactMode != 0 {
		mode = artifactMode
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return copyArtifactError(artifact, fmt.Errorf("failed to create destination directory: %w", err))
	}

	if err := copyFileContents(string(artifact.Source), dest, mode); err != nil {
		return copyArtifactError(artifact, err)
	}

	return nil
}

// Remove removes a container.
func (e *BaseCLIEngine) Remove(ctx context.Context, containerID ContainerID, force bool) error {
	args := e.RemoveArgs(containerID, force)
	return e.RunCommandStatus(ctx, args...)
}

// RemoveImage removes an image.
func (e *BaseCLIEngine) RemoveImage(ctx context.Context, image bakefile.ImageRef, force bool) error {
	args := e.RemoveImageArgs(image, force)
	return e.RunCommandStatus(ctx, args...)
}

// --- Destination Resolution ---

// resolveDestPath resolves an artifact destination under the mount point.
// The destination is always interpreted as absolute within the container
// filesystem; a path that escapes the mount point after cleaning is rejected.
func resolveDestPath(mountPoint MountPoint, dest bakefile.DestPath) (string, error) {
	resolved := filepath.Join(string(mountPoint), filepath.Clean(string(dest)))

	mountClean := filepath.Clean(string(mountPoint))
	if !strings.HasPrefix(resolved, mountClean+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q resolves outside %q", ErrDestEscapesMount, dest, mountPoint)
	}

	return resolved, nil
}

// copyFileContents copies src to dst with the given mode, syncing before close
// so a commit that follows immediately sees the full contents.
func copyFileContents(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy contents: %w", err)
	}

	// OpenFile's mode is masked by umask; chmod enforces the exact mode.
	if err := out.Chmod(mode); err != nil {
		out.Close()
		return fmt.Errorf("failed to set mode: %w", err)
	}

	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("failed to sync destination: %w", err)
	}

	return out.Close()
}

// --- Actionable Error Helpers ---

// copyArtifactError creates an actionable error for artifact copy failures.
func copyArtifactError(artifact bakefile.Artifact, cause error) error {
	return issue.NewErrorContext().
		WithOperation("copy artifact into container").
		WithResource(string(artifact.Source)).
		WithSuggestion("Check that the source file exists and is readable").
		WithSuggestion("Build the artifact first if it is a compiled binary").
		WithSuggestion("Verify the destination path in the bakefile").
		Wrap(cause).
		BuildError()
}

// fromError creates an actionable error for working-container creation failures.
func fromError(engine string, opts FromOptions, cause error) error {
	return issue.NewErrorContext().
		WithOperation("create working container").
		WithResource(string(opts.Image)).
		WithSuggestion("Check the base image reference for typos").
		WithSuggestion("Verify network access to the registry").
		WithSuggestion("Try pulling manually: " + engine + " pull " + string(opts.Image)).
		Wrap(cause).
		BuildError()
}

// commitError creates an actionable error for commit failures.
func commitError(engine string, opts CommitOptions, cause error) error {
	return issue.NewErrorContext().
		WithOperation("commit image").
		WithResource(string(opts.Image)).
		WithSuggestion("Check that local storage has enough free space").
		WithSuggestion("Verify the image name is a valid reference").
		WithSuggestion("Inspect leftover containers: " + engine + " containers").
		Wrap(cause).
		BuildError()
}
