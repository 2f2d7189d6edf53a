// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"ocibake/pkg/bakefile"
)

// PodmanEngine implements the Engine interface using the Podman CLI.
// It embeds BaseCLIEngine for common CLI operations.
//
// Podman has no equivalent of buildah config, so Configure stages the image
// configuration in memory and Commit applies it via --change flags. The
// staged state is per-container and guarded by a mutex so a single engine
// can be shared across goroutines.
type PodmanEngine struct {
	*BaseCLIEngine

	mu             sync.Mutex
	pendingChanges map[ContainerID][]string
}

// NewPodmanEngine creates a new Podman engine.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *PodmanEngine {
	path, _ := exec.LookPath("podman")

	allOpts := append([]BaseCLIEngineOption{WithName(string(EngineTypePodman))}, opts...)

	return &PodmanEngine{
		BaseCLIEngine:  NewBaseCLIEngine(path, allOpts...),
		pendingChanges: make(map[ContainerID][]string),
	}
}

// Available checks if Podman is available.
func (e *PodmanEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	cmd := e.CreateCommand(context.Background(), "version", "--format", "{{.Version}}")
	return cmd.Run() == nil
}

// Version returns the Podman version.
func (e *PodmanEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--format", "{{.Version}}")
	if err != nil {
		return "", fmt.Errorf("failed to get podman version: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// From creates a working container from a base image via podman create.
// podman prints the container ID on stdout.
func (e *PodmanEngine) From(ctx context.Context, opts FromOptions) (ContainerID, error) {
	if err := opts.Image.Validate(); err != nil {
		return "", err
	}

	args := e.FromArgs("create", opts)

	out, err := e.RunCommandWithOutput(ctx, args...)
	if err != nil {
		return "", fromError("podman", opts, err)
	}

	id := ContainerID(strings.TrimSpace(out))
	if err := id.Validate(); err != nil {
		return "", fromError("podman", opts, fmt.Errorf("podman create produced no container ID: %w", err))
	}
	return id, nil
}

// Mount mounts the working container's root filesystem and returns the host path.
// Rootless podman requires running inside podman unshare for this to succeed;
// the resulting error message from podman points that out.
func (e *PodmanEngine) Mount(ctx context.Context, containerID ContainerID) (MountPoint, error) {
	if err := containerID.Validate(); err != nil {
		return "", err
	}

	out, err := e.RunCommandWithOutput(ctx, e.MountArgs(containerID)...)
	if err != nil {
		return "", fmt.Errorf("failed to mount container %s: %w", containerID, err)
	}

	mountPoint := MountPoint(strings.TrimSpace(out))
	if err := mountPoint.Validate(); err != nil {
		return "", fmt.Errorf("podman mount produced no mount point for %s: %w", containerID, err)
	}
	return mountPoint, nil
}

// Unmount unmounts the working container's root filesystem.
func (e *PodmanEngine) Unmount(ctx context.Context, containerID ContainerID) error {
	if err := containerID.Validate(); err != nil {
		return err
	}
	if err := e.RunCommandStatus(ctx, e.UnmountArgs(containerID)...); err != nil {
		return fmt.Errorf("failed to unmount container %s: %w", containerID, err)
	}
	return nil
}

// Configure stages image configuration for the working container.
// Podman cannot mutate a container's image config in place, so the changes
// are recorded and applied as --change flags when Commit runs.
func (e *PodmanEngine) Configure(ctx context.Context, containerID ContainerID, cfg ImageConfig) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("configure aborted: %w", ctx.Err())
	default:
	}

	if err := containerID.Validate(); err != nil {
		return err
	}

	var changes []string

	if len(cfg.Entrypoint) > 0 {
		entrypoint, err := EntrypointJSON(cfg.Entrypoint)
		if err != nil {
			return err
		}
		changes = append(changes, "ENTRYPOINT "+entrypoint)
	}

	if cfg.User != "" {
		if err := cfg.User.Validate(); err != nil {
			return err
		}
		changes = append(changes, "USER "+string(cfg.User))
	}

	if len(changes) == 0 {
		return nil
	}

	e.mu.Lock()
	e.pendingChanges[containerID] = append(e.pendingChanges[containerID], changes...)
	e.mu.Unlock()

	return nil
}

// Commit commits the working container as an image, applying any staged
// configuration changes. podman prints the image ID on stdout.
func (e *PodmanEngine) Commit(ctx context.Context, containerID ContainerID, opts CommitOptions) (string, error) {
	if err := containerID.Validate(); err != nil {
		return "", err
	}
	if err := opts.Image.Validate(); err != nil {
		return "", err
	}
	if err := opts.Format.Validate(); err != nil {
		return "", err
	}

	e.mu.Lock()
	changes := e.pendingChanges[containerID]
	e.mu.Unlock()

	args := e.CommitArgs(containerID, opts, changes)

	out, err := e.RunCommandWithOutput(ctx, args...)
	if err != nil {
		return "", commitError("podman", opts, err)
	}

	// Staged changes are consumed by a successful commit.
	e.mu.Lock()
	delete(e.pendingChanges, containerID)
	e.mu.Unlock()

	return strings.TrimSpace(out), nil
}

// Remove removes the working container and discards any staged changes.
func (e *PodmanEngine) Remove(ctx context.Context, containerID ContainerID, force bool) error {
	e.mu.Lock()
	delete(e.pendingChanges, containerID)
	e.mu.Unlock()

	return e.BaseCLIEngine.Remove(ctx, containerID, force)
}

// StagedChanges returns a copy of the changes staged for a container.
// Exposed for tests and diagnostics.
func (e *PodmanEngine) StagedChanges(containerID ContainerID) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	changes := e.pendingChanges[containerID]
	out := make([]string, len(changes))
	copy(out, changes)
	return out
}

// ImageExists checks if an image exists in local storage. podman image
// exists distinguishes its outcomes by exit code: 0 for present, 1 for
// absent, 125 for an invocation error. Only exit code 1 is treated as
// absence; anything else is reported as an error.
func (e *PodmanEngine) ImageExists(ctx context.Context, image bakefile.ImageRef) (bool, error) {
	err := e.RunCommandStatus(ctx, "image", "exists", string(image))
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, err
}

// InspectImage returns podman's JSON description of an image.
func (e *PodmanEngine) InspectImage(ctx context.Context, image bakefile.ImageRef) (string, error) {
	return e.RunCommandWithOutput(ctx, "image", "inspect", string(image))
}
