// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"ocibake/pkg/bakefile"
)

// BuildahEngine implements the Engine interface using the buildah CLI.
// It embeds BaseCLIEngine for common CLI operations.
type BuildahEngine struct {
	*BaseCLIEngine
}

// NewBuildahEngine creates a new buildah engine.
func NewBuildahEngine(opts ...BaseCLIEngineOption) *BuildahEngine {
	path, _ := exec.LookPath("buildah")

	allOpts := append([]BaseCLIEngineOption{WithName(string(EngineTypeBuildah))}, opts...)

	return &BuildahEngine{
		BaseCLIEngine: NewBaseCLIEngine(path, allOpts...),
	}
}

// Available checks if buildah is available.
func (e *BuildahEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	cmd := e.CreateCommand(context.Background(), "version")
	return cmd.Run() == nil
}

// Version returns the buildah version.
func (e *BuildahEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--json")
	if err != nil {
		return "", fmt.Errorf("failed to get buildah version: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// From creates a working container from a base image.
// buildah prints the container name on stdout.
func (e *BuildahEngine) From(ctx context.Context, opts FromOptions) (ContainerID, error) {
	if err := opts.Image.Validate(); err != nil {
		return "", err
	}

	args := e.FromArgs("from", opts)

	out, err := e.RunCommandWithOutput(ctx, args...)
	if err != nil {
		return "", fromError("buildah", opts, err)
	}

	id := ContainerID(strings.TrimSpace(out))
	if err := id.Validate(); err != nil {
		return "", fromError("buildah", opts, fmt.Errorf("buildah from produced no container ID: %w", err))
	}
	return id, nil
}

// Mount mounts the working container's root filesystem and returns the host path.
func (e *BuildahEngine) Mount(ctx context.Context, containerID ContainerID) (MountPoint, error) {
	if err := containerID.Validate(); err != nil {
		return "", err
	}

	out, err := e.RunCommandWithOutput(ctx, e.MountArgs(containerID)...)
	if err != nil {
		return "", fmt.Errorf("failed to mount container %s: %w", containerID, err)
	}

	mountPoint := MountPoint(strings.TrimSpace(out))
	if err := mountPoint.Validate(); err != nil {
		return "", fmt.Errorf("buildah mount produced no mount point for %s: %w", containerID, err)
	}
	return mountPoint, nil
}

// Unmount unmounts the working container's root filesystem.
func (e *BuildahEngine) Unmount(ctx context.Context, containerID ContainerID) error {
	if err := containerID.Validate(); err != nil {
		return err
	}
	if err := e.RunCommandStatus(ctx, e.UnmountArgs(containerID)...); err != nil {
		return fmt.Errorf("failed to unmount container %s: %w", containerID, err)
	}
	return nil
}

// Configure sets image configuration on the working container via buildah config.
func (e *BuildahEngine) Configure(ctx context.Context, containerID ContainerID, cfg ImageConfig) error {
	if err := containerID.Validate(); err != nil {
		return err
	}

	args := []string{"config"}

	if len(cfg.Entrypoint) > 0 {
		entrypoint, err := EntrypointJSON(cfg.Entrypoint)
		if err != nil {
			return err
		}
		args = append(args, "--entrypoint", entrypoint)
	}

	if cfg.User != "" {
		if err := cfg.User.Validate(); err != nil {
			return err
		}
		args = append(args, "--user", string(cfg.User))
	}

	// Nothing to apply
	if len(args) == 1 {
		return nil
	}

	args = append(args, string(containerID))

	if err := e.RunCommandStatus(ctx, args...); err != nil {
		return fmt.Errorf("failed to configure container %s: %w", containerID, err)
	}
	return nil
}

// Commit commits the working container as an image.
// buildah prints the image ID on stdout.
func (e *BuildahEngine) Commit(ctx context.Context, containerID ContainerID, opts CommitOptions) (string, error) {
	if err := containerID.Validate(); err != nil {
		return "", err
	}
	if err := opts.Image.Validate(); err != nil {
		return "", err
	}
	if err := opts.Format.Validate(); err != nil {
		return "", err
	}

	args := e.CommitArgs(containerID, opts, nil)

	out, err := e.RunCommandWithOutput(ctx, args...)
	if err != nil {
		return "", commitError("buildah", opts, err)
	}

	return strings.TrimSpace(out), nil
}

// ImageExists checks if an image exists in local storage. A non-zero exit
// from inspect means the image is absent; failures to run inspect at all
// (missing binary, canceled context) are reported as errors.
func (e *BuildahEngine) ImageExists(ctx context.Context, image bakefile.ImageRef) (bool, error) {
	err := e.RunCommandStatus(ctx, "inspect", "--type", "image", string(image))
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, err
}

// InspectImage returns buildah's JSON description of an image.
func (e *BuildahEngine) InspectImage(ctx context.Context, image bakefile.ImageRef) (string, error) {
	return e.RunCommandWithOutput(ctx, "inspect", "--type", "image", string(image))
}
