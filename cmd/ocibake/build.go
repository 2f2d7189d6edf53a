// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"ocibake/internal/builder"
	"ocibake/internal/config"
	"ocibake/internal/container"
	"ocibake/internal/issue"
	"ocibake/pkg/bakefile"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	buildFile          string
	buildBase          string
	buildImage         string
	buildEntrypoint    []string
	buildUser          string
	buildFormat        string
	buildArtifacts     []string
	buildEngine        string
	buildTimeout       time.Duration
	buildKeepOnFailure bool
	buildVerify        bool
	buildQuietPull     bool
	buildPullAttempts  int
	buildPullBackoff   time.Duration
	buildContainerName string

	// buildCmd bakes a recipe into an image
	buildCmd = &cobra.Command{
		Use:   "build [bakefile]",
		Short: "Bake the recipe into an image",
		Long: `Bake a recipe into a container image.

The recipe is read from a bakefile (bakefile.cue or bakefile.toml) in the
current directory, or from --file. Individual recipe fields can be
overridden with flags; with no bakefile at all, the flags alone must
describe the recipe.

The build instantiates a working container from the base image, mounts
its root filesystem, copies the artifacts in, configures entrypoint and
user, and commits the result. On failure the working container is
removed unless --keep-on-failure is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuild,
	}
)

func init() {
	buildCmd.Flags().StringVarP(&buildFile, "file", "f", "", "path to the bakefile (default: discover in current directory)")
	buildCmd.Flags().StringVar(&buildBase, "base", "", "base image to start from (overrides recipe)")
	buildCmd.Flags().StringVar(&buildImage, "image", "", "name for the committed image (overrides recipe)")
	buildCmd.Flags().StringSliceVar(&buildEntrypoint, "entrypoint", nil, "image entrypoint, exec form (overrides recipe)")
	buildCmd.Flags().StringVar(&buildUser, "user", "", "numeric uid:gid the image runs as (overrides recipe)")
	buildCmd.Flags().StringVar(&buildFormat, "format", "", "manifest format: docker or oci (overrides recipe)")
	buildCmd.Flags().StringArrayVar(&buildArtifacts, "artifact", nil, "artifact to embed as source:dest[:mode] (repeatable; overrides recipe)")
	buildCmd.Flags().StringVar(&buildEngine, "engine", "", "container engine: auto, buildah or podman (overrides config)")
	buildCmd.Flags().DurationVar(&buildTimeout, "timeout", 0, "overall build timeout (0 = no timeout)")
	buildCmd.Flags().BoolVar(&buildKeepOnFailure, "keep-on-failure", false, "keep the working container when the build fails")
	buildCmd.Flags().BoolVar(&buildVerify, "verify", false, "inspect the committed image and check its metadata")
	buildCmd.Flags().BoolVar(&buildQuietPull, "quiet-pull", false, "suppress base image pull progress")
	buildCmd.Flags().IntVar(&buildPullAttempts, "pull-attempts", 0, "max base image pull attempts (0 = from config)")
	buildCmd.Flags().DurationVar(&buildPullBackoff, "pull-backoff", 0, "base delay between pull attempts (0 = from config)")
	buildCmd.Flags().StringVar(&buildContainerName, "name", "", "name for the working container")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()

	recipePath := buildFile
	if len(args) > 0 {
		recipePath = args[0]
	}

	bf, err := loadRecipe(recipePath)
	if err != nil {
		renderIssue(issueIdForRecipeError(err))
		return err
	}
	applyRecipeOverrides(bf)

	engine, err := selectEngine(cfg, buildEngine)
	if err != nil {
		renderIssue(issue.EngineNotFoundId)
		return err
	}

	opts := buildOptions(cfg)
	logger := buildLogger()

	logger.Info("baking image",
		"base", bf.Base,
		"image", bf.Image,
		"engine", engine.Name())

	result, err := builder.New(engine, opts, logger).Build(cmd.Context(), bf)
	if err != nil {
		if id, ok := issueIdForBuildError(err); ok {
			renderIssue(id)
		}
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Printf("%s Baked %s (%s) in %s\n",
		SuccessStyle.Render("✓"),
		CmdStyle.Render(result.Image.String()),
		shortImageID(result.ImageID),
		result.Duration.Round(time.Millisecond))
	return nil
}

// loadRecipe resolves the recipe: an explicit --file, a discovered bakefile
// in the current directory, or the built-in defaults when neither exists.
func loadRecipe(explicitPath string) (*bakefile.Bakefile, error) {
	if explicitPath != "" {
		return bakefile.Parse(explicitPath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}
	if path := bakefile.Discover(cwd); path != "" {
		return bakefile.Parse(path)
	}

	// No bakefile: start from the defaults and let flags override.
	return bakefile.Default(), nil
}

// applyRecipeOverrides merges build flags over the recipe. Flags win over
// the file for every field they set.
func applyRecipeOverrides(bf *bakefile.Bakefile) {
	if buildBase != "" {
		bf.Base = bakefile.ImageRef(buildBase)
	}
	if buildImage != "" {
		bf.Image = bakefile.ImageRef(buildImage)
	}
	if len(buildEntrypoint) > 0 {
		bf.Entrypoint = buildEntrypoint
	}
	if buildUser != "" {
		bf.User = bakefile.UserSpec(buildUser)
	}
	if buildFormat != "" {
		bf.Format = bakefile.ImageFormat(buildFormat)
	}
	if len(buildArtifacts) > 0 {
		artifacts := make([]bakefile.Artifact, 0, len(buildArtifacts))
		for _, spec := range buildArtifacts {
			// Invalid specs still land in the recipe so Bakefile.Validate()
			// reports them alongside every other field error.
			a, _ := bakefile.ParseArtifact(spec)
			artifacts = append(artifacts, a)
		}
		bf.Artifacts = artifacts
	}
}

// selectEngine picks the container engine from the --engine flag, falling
// back to the configured preference.
func selectEngine(cfg *config.Config, flagValue string) (container.Engine, error) {
	pref := cfg.Engine
	if flagValue != "" {
		pref = config.EnginePreference(flagValue)
		if valid, errs := pref.IsValid(); !valid {
			return nil, errors.Join(errs...)
		}
	}

	switch pref {
	case config.EngineBuildah:
		return container.NewEngine(container.EngineTypeBuildah)
	case config.EnginePodman:
		return container.NewEngine(container.EngineTypePodman)
	default:
		return container.AutoDetectEngine()
	}
}

// buildOptions assembles builder options from config and flags. Flags win
// for every field they set.
func buildOptions(cfg *config.Config) builder.Options {
	opts := builder.Options{
		KeepOnFailure: !cfg.CleanupOnFailure,
		Timeout:       buildTimeout,
		PullAttempts:  cfg.Pull.Attempts,
		PullBackoff:   cfg.Pull.Backoff.Duration(builder.DefaultPullBackoff),
		QuietPull:     buildQuietPull,
		Verify:        buildVerify,
		ContainerName: buildContainerName,
	}
	if buildKeepOnFailure {
		opts.KeepOnFailure = true
	}
	if buildPullAttempts > 0 {
		opts.PullAttempts = buildPullAttempts
	}
	if buildPullBackoff > 0 {
		opts.PullBackoff = buildPullBackoff
	}
	return opts
}

// buildLogger creates the build logger, honoring --verbose.
func buildLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "ocibake",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// issueIdForRecipeError classifies a recipe loading failure.
func issueIdForRecipeError(err error) issue.Id {
	if errors.Is(err, os.ErrNotExist) {
		return issue.BakefileNotFoundId
	}
	return issue.BakefileParseErrorId
}

// issueIdForBuildError maps a failed build step to rendered guidance.
// Validation errors get no card; the error text already names each field.
func issueIdForBuildError(err error) (issue.Id, bool) {
	var stepErr *builder.StepError
	if !errors.As(err, &stepErr) {
		return 0, false
	}

	switch stepErr.Step {
	case builder.StepResolve:
		return issue.BaseImageUnresolvedId, true
	case builder.StepMount:
		return issue.MountFailedId, true
	case builder.StepCopy:
		return issue.ArtifactMissingId, true
	case builder.StepConfigure:
		return issue.ConfigureFailedId, true
	case builder.StepCommit:
		return issue.CommitFailedId, true
	case builder.StepVerify:
		return issue.VerifyFailedId, true
	case builder.StepUnmount, builder.StepRemove:
		return issue.UnmountFailedId, true
	default:
		return 0, false
	}
}

// renderIssue writes the guidance card for an issue to stderr. Rendering
// problems are swallowed; the caller still returns the underlying error.
func renderIssue(id issue.Id) {
	scheme := "dark"
	if cfg := currentConfig(); cfg.UI.ColorScheme == config.ColorSchemeLight {
		scheme = "light"
	}
	if rendered, err := issue.Get(id).Render(scheme); err == nil {
		fmt.Fprint(os.Stderr, rendered)
	}
}

// shortImageID truncates an image ID for display.
func shortImageID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
