// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"context"
	"fmt"
	"os"
	"time"

	"ocibake/internal/container"
	"ocibake/pkg/bakefile"

	"github.com/charmbracelet/log"
)

const (
	// DefaultPullAttempts bounds base-image pull retries when the caller
	// does not configure a budget.
	DefaultPullAttempts = 3
	// DefaultPullBackoff is the base delay between pull attempts.
	DefaultPullBackoff = 2 * time.Second
)

type (
	// Options tunes a build run. The zero value gives a sensible build:
	// cleanup on failure, default pull retry budget, no overall timeout.
	Options struct {
		// KeepOnFailure preserves the working container (still mounted when
		// the failure happened after mount) for inspection instead of
		// cleaning it up. The cleanup commands are logged.
		KeepOnFailure bool
		// Timeout bounds the whole build. Zero means no timeout.
		Timeout time.Duration
		// PullAttempts is the pull retry budget (including the first attempt).
		// Zero means DefaultPullAttempts.
		PullAttempts int
		// PullBackoff is the base delay between pull attempts, doubled each
		// retry. Zero means DefaultPullBackoff.
		PullBackoff time.Duration
		// QuietPull suppresses pull progress output.
		QuietPull bool
		// Verify inspects the committed image and checks entrypoint/user
		// metadata against the recipe after commit.
		Verify bool
		// ContainerName optionally names the working container. Leave empty
		// to let the engine allocate a fresh name, which keeps concurrent
		// builds from colliding.
		ContainerName string
	}

	// Result describes a completed build.
	Result struct {
		// ImageID is the ID of the committed image.
		ImageID string
		// Image is the committed image name.
		Image bakefile.ImageRef
		// Engine is the name of the engine that performed the build.
		Engine string
		// Duration is the wall-clock build time.
		Duration time.Duration
	}

	// Builder bakes a recipe into an image using a container engine.
	Builder struct {
		engine container.Engine
		logger *log.Logger
		opts   Options
	}
)

// New creates a Builder. A nil logger falls back to a stderr logger.
func New(engine container.Engine, opts Options, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "ocibake",
		})
	}
	if opts.PullAttempts <= 0 {
		opts.PullAttempts = DefaultPullAttempts
	}
	if opts.PullBackoff <= 0 {
		opts.PullBackoff = DefaultPullBackoff
	}
	return &Builder{
		engine: engine,
		logger: logger,
		opts:   opts,
	}
}

// Build runs the full bake sequence for the recipe and returns the committed
// image. On failure the working container is unmounted and removed unless
// KeepOnFailure is set; the returned error identifies the failing step.
func (b *Builder) Build(ctx context.Context, bf *bakefile.Bakefile) (result *Result, retErr error) {
	if err := bf.Validate(); err != nil {
		return nil, err
	}

	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	b.logger.Info("starting build",
		"base", bf.Base,
		"image", bf.Image,
		"engine", b.engine.Name())

	// Step 1: working container, with bounded pull retry.
	containerID, err := b.createWorkingContainer(ctx, bf.Base)
	if err != nil {
		return nil, stepError(StepResolve, err)
	}
	b.logger.Info("created working container", "container", containerID)

	// From here on the working container exists and must be released on
	// every exit path (unless the caller asked to keep it on failure).
	mounted := false
	released := false
	defer func() {
		if released {
			return
		}
		if retErr != nil && b.opts.KeepOnFailure {
			b.logKeptContainer(containerID, mounted)
			return
		}
		b.release(containerID, mounted, retErr != nil)
	}()

	// Step 2: mount the root filesystem.
	mountPoint, err := b.engine.Mount(ctx, containerID)
	if err != nil {
		return nil, stepError(StepMount, err)
	}
	mounted = true
	b.logger.Info("mounted root filesystem", "path", mountPoint)

	// Steps 3/4: copy artifacts.
	for _, artifact := range bf.Artifacts {
		if err := b.engine.CopyInto(ctx, mountPoint, artifact); err != nil {
			return nil, stepError(StepCopy, err)
		}
		b.logger.Info("copied artifact", "source", artifact.Source, "dest", artifact.Dest)
	}

	// Steps 5/6: entrypoint and user metadata.
	cfg := container.ImageConfig{
		Entrypoint: bf.Entrypoint,
		User:       bf.User,
	}
	if err := b.engine.Configure(ctx, containerID, cfg); err != nil {
		return nil, stepError(StepConfigure, err)
	}
	b.logger.Info("configured image metadata", "entrypoint", bf.Entrypoint, "user", bf.User)

	// Step 7: commit. The only step that produces a durable result.
	imageID, err := b.engine.Commit(ctx, containerID, container.CommitOptions{
		Image:  bf.Image,
		Format: bf.Format,
	})
	if err != nil {
		return nil, stepError(StepCommit, err)
	}
	b.logger.Info("committed image", "image", bf.Image, "id", imageID)

	// Step 8: release the working container. Failures here are real errors
	// on the success path — a leaked mount violates the cleanup invariant.
	if err := b.engine.Unmount(ctx, containerID); err != nil {
		return nil, stepError(StepUnmount, err)
	}
	mounted = false
	if err := b.engine.Remove(ctx, containerID, false); err != nil {
		return nil, stepError(StepRemove, err)
	}
	released = true

	if b.opts.Verify {
		if err := b.verifyImage(ctx, bf); err != nil {
			return nil, stepError(StepVerify, err)
		}
		b.logger.Info("verified image metadata", "image", bf.Image)
	}

	return &Result{
		ImageID:  imageID,
		Image:    bf.Image,
		Engine:   b.engine.Name(),
		Duration: time.Since(start),
	}, nil
}

// createWorkingContainer creates the working container, retrying transient
// pull failures with exponential backoff. Only this step retries; every
// later step fails fast.
func (b *Builder) createWorkingContainer(ctx context.Context, base bakefile.ImageRef) (container.ContainerID, error) {
	var containerID container.ContainerID

	err := container.RetryPull(ctx, b.opts.PullAttempts, b.opts.PullBackoff,
		func(attempt int) error {
			if attempt > 0 {
				b.logger.Warn("retrying base image pull",
					"base", base,
					"attempt", attempt+1,
					"max", b.opts.PullAttempts)
			}

			id, err := b.engine.From(ctx, container.FromOptions{
				Image:     base,
				Name:      b.opts.ContainerName,
				QuietPull: b.opts.QuietPull,
			})
			if err != nil {
				return err
			}
			containerID = id
			return nil
		})
	if err != nil {
		return "", err
	}
	return containerID, nil
}

// release unmounts and removes the working container. On the failure path
// release errors are logged rather than returned so they never mask the
// build error.
func (b *Builder) release(containerID container.ContainerID, mounted, failed bool) {
	// The build context may already be canceled or expired; cleanup gets
	// its own deadline so it still runs.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if mounted {
		if err := b.engine.Unmount(ctx, containerID); err != nil {
			b.logger.Warn("failed to unmount working container during cleanup",
				"container", containerID, "error", err)
		}
	}
	if err := b.engine.Remove(ctx, containerID, true); err != nil {
		b.logger.Warn("failed to remove working container during cleanup",
			"container", containerID, "error", err)
		return
	}
	if failed {
		b.logger.Info("cleaned up working container after failure", "container", containerID)
	}
}

// logKeptContainer tells the user how to clean up a preserved container.
func (b *Builder) logKeptContainer(containerID container.ContainerID, mounted bool) {
	b.logger.Warn("keeping working container for inspection", "container", containerID)
	if mounted {
		b.logger.Warn("root filesystem is still mounted",
			"unmount", fmt.Sprintf("%s umount %s", b.engine.Name(), containerID))
	}
	b.logger.Warn("remove it when done",
		"remove", fmt.Sprintf("%s rm %s", b.engine.Name(), containerID))
}
