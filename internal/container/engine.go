// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"

	"ocibake/pkg/bakefile"
)

// Engine defines the interface for image-bake operations.
// Implementations shell out to a CLI engine (buildah or podman); the
// interface is intentionally narrow so tests can substitute a fake.
type Engine interface {
	// Name returns the engine name (buildah or podman)
	Name() string
	// Available checks if the engine is available on the system
	Available() bool
	// Version returns the engine version
	Version(ctx context.Context) (string, error)

	// From creates a working container from a base image
	From(ctx context.Context, opts FromOptions) (ContainerID, error)
	// Mount mounts the working container's root filesystem on the host
	Mount(ctx context.Context, containerID ContainerID) (MountPoint, error)
	// Unmount unmounts the working container's root filesystem
	Unmount(ctx context.Context, containerID ContainerID) error
	// CopyInto copies a host artifact into the mounted root filesystem
	CopyInto(ctx context.Context, mountPoint MountPoint, artifact bakefile.Artifact) error
	// Configure sets image configuration (entrypoint, user) on the working container
	Configure(ctx context.Context, containerID ContainerID, cfg ImageConfig) error
	// Commit commits the working container as an image and returns the image ID
	Commit(ctx context.Context, containerID ContainerID, opts CommitOptions) (string, error)
	// Remove removes the working container
	Remove(ctx context.Context, containerID ContainerID, force bool) error

	// ImageExists checks if an image exists in local storage
	ImageExists(ctx context.Context, image bakefile.ImageRef) (bool, error)
	// InspectImage returns the engine's JSON description of an image
	InspectImage(ctx context.Context, image bakefile.ImageRef) (string, error)
	// RemoveImage removes an image from local storage
	RemoveImage(ctx context.Context, image bakefile.ImageRef, force bool) error
}

// FromOptions contains options for creating a working container
type FromOptions struct {
	// Image is the base image reference
	Image bakefile.ImageRef
	// Name is an optional name for the working container
	Name string
	// QuietPull suppresses pull progress output
	QuietPull bool
}

// ImageConfig contains image configuration applied to a working container
type ImageConfig struct {
	// Entrypoint is the image entrypoint in exec form
	Entrypoint []string
	// User is the uid[:gid] the image runs as; empty inherits the base image's user
	User bakefile.UserSpec
}

// CommitOptions contains options for committing a working container
type CommitOptions struct {
	// Image is the target image name
	Image bakefile.ImageRef
	// Format is the image manifest format (docker or oci)
	Format bakefile.ImageFormat
	// Quiet suppresses commit progress output
	Quiet bool
}

// EngineType identifies the container engine type
type EngineType string

const (
	EngineTypeBuildah EngineType = "buildah"
	EngineTypePodman  EngineType = "podman"
)

// ErrEngineNotAvailable is returned when a container engine is not available
type ErrEngineNotAvailable struct {
	Engine string
	Reason string
}

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine creates a new container engine based on preference
func NewEngine(preferredType EngineType) (Engine, error) {
	switch preferredType {
	case EngineTypeBuildah:
		engine := NewBuildahEngine()
		if engine.Available() {
			return engine, nil
		}
		// Fall back to Podman
		podmanEngine := NewPodmanEngine()
		if podmanEngine.Available() {
			return podmanEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "buildah",
			Reason: "buildah is not installed or not accessible, and podman fallback is also not available",
		}

	case EngineTypePodman:
		engine := NewPodmanEngine()
		if engine.Available() {
			return engine, nil
		}
		// Fall back to buildah
		buildahEngine := NewBuildahEngine()
		if buildahEngine.Available() {
			return buildahEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "podman",
			Reason: "podman is not installed or not accessible, and buildah fallback is also not available",
		}

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferredType)
	}
}

// AutoDetectEngine tries to find an available container engine
func AutoDetectEngine() (Engine, error) {
	// Try buildah first (it is the purpose-built image build tool)
	buildah := NewBuildahEngine()
	if buildah.Available() {
		return buildah, nil
	}

	// Try Podman
	podman := NewPodmanEngine()
	if podman.Available() {
		return podman, nil
	}

	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (buildah or podman) is available on this system",
	}
}
