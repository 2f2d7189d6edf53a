// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies a known failure class of the image build procedure.
type Id int

const (
	BaseImageUnresolvedId Id = iota + 1
	MountFailedId
	ArtifactMissingId
	ConfigureFailedId
	CommitFailedId
	VerifyFailedId
	UnmountFailedId
	EngineNotFoundId
	BakefileNotFoundId
	BakefileParseErrorId
	ConfigLoadFailedId
)

type (
	// MarkdownMsg is the guidance text rendered for an issue.
	MarkdownMsg string

	// HttpLink points at external documentation for an issue.
	HttpLink string

	// Issue is a known failure class with rendered guidance, looked up by Id
	// when a build step fails.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		extLinks []HttpLink
	}
)

// Id returns the issue's identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw markdown guidance.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// ExtLinks returns external links that might be useful for the user.
func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the guidance markdown for terminal display.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.extLinks {
			extraMd += "- " + string(link) + "\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	baseImageUnresolvedIssue = &Issue{
		id: BaseImageUnresolvedId,
		mdMsg: `
# Base image could not be resolved!

The working container could not be created because the base image failed to
resolve or pull.

## Things you can try:
- Check the image reference for typos (registry/name:tag)
- Verify network access to the registry:
~~~
$ buildah pull docker.io/fedora:35
~~~
- If the registry needs credentials, log in first:
~~~
$ buildah login <registry>
~~~
- Transient network failures are retried automatically; raise the retry
  budget in ~/.config/ocibake/config.cue:
~~~cue
pull: attempts: 5
~~~`,
		extLinks: []HttpLink{"https://github.com/containers/buildah/blob/main/docs/buildah-from.1.md"},
	}

	mountFailedIssue = &Issue{
		id: MountFailedId,
		mdMsg: `
# Mounting the working container failed!

The container was created but its root filesystem could not be mounted.

## Common causes:
- Rootless mode without a user namespace: wrap the build in
~~~
$ buildah unshare ocibake build
~~~
- Storage driver problems (stale overlay mounts)
- The working container was removed out from under the build

## Things you can try:
- Check for leaked working containers:
~~~
$ buildah containers
~~~
- Reset the storage of broken containers:
~~~
$ buildah rm --all
~~~`,
		extLinks: []HttpLink{"https://github.com/containers/buildah/blob/main/docs/buildah-mount.1.md"},
	}

	artifactMissingIssue = &Issue{
		id: ArtifactMissingId,
		mdMsg: `
# Artifact not found!

One of the files the recipe embeds does not exist on the host. Nothing was
committed: a build with missing artifacts never produces an image.

## Things you can try:
- Build the artifact first (the default recipe expects a release binary):
~~~
$ cargo build --release
~~~
- Check the source paths in your bakefile:
~~~cue
artifacts: [
	{source: "./target/release/simpleldap", dest: "/simpleldap"},
	{source: "./database.sqlite", dest: "/database.sqlite"},
]
~~~
- Paths are resolved relative to the directory you run ocibake from`,
	}

	configureFailedIssue = &Issue{
		id: ConfigureFailedId,
		mdMsg: `
# Configuring image metadata failed!

Setting the entrypoint or user on the working container failed.

## Things you can try:
- Check the entrypoint and user in your bakefile:
~~~cue
entrypoint: ["/simpleldap"]
user: "1000:1000"
~~~
- The user must be numeric uid:gid; named users are not resolved
- Run with --verbose to see the underlying engine error`,
	}

	commitFailedIssue = &Issue{
		id: CommitFailedId,
		mdMsg: `
# Committing the image failed!

All staging steps succeeded but the final commit did not produce an image.

## Common causes:
- Out of storage space
- Invalid destination image name
- A concurrent process removed the working container

## Things you can try:
- Check free space under the container storage root
- Verify the image name:
~~~cue
image: "simpleldap"
~~~
- Run with --verbose to see the underlying engine error`,
		extLinks: []HttpLink{"https://github.com/containers/buildah/blob/main/docs/buildah-commit.1.md"},
	}

	verifyFailedIssue = &Issue{
		id: VerifyFailedId,
		mdMsg: `
# Baked image failed verification!

The image was committed, but inspecting it back showed configuration that
does not match the recipe (entrypoint, user, or an embedded artifact).

## Common causes:
- Another process re-tagged the image name between commit and inspect
- The engine ignored a config change it does not support

## Things you can try:
- Inspect the committed image yourself:
~~~
$ podman image inspect simpleldap
~~~
- Re-run the bake; the previous image is replaced on success
- Skip verification if the mismatch is expected:
~~~
$ ocibake build --verify=false
~~~`,
	}

	unmountFailedIssue = &Issue{
		id: UnmountFailedId,
		mdMsg: `
# Unmounting the working container failed!

The image was committed but the working container's filesystem could not be
released. The image itself is intact.

## Things you can try:
- List and unmount leaked containers manually:
~~~
$ buildah containers
$ buildah umount <container>
$ buildah rm <container>
~~~`,
	}

	engineNotFoundIssue = &Issue{
		id: EngineNotFoundId,
		mdMsg: `
# No container engine found!

ocibake drives an external container tool, and neither buildah nor podman is
available on this system.

## Supported engines:
- **buildah** (recommended; matches the original recipe)
- **podman** (fallback)

## Things you can try:
- Install buildah:
  - Fedora/RHEL: ` + "`sudo dnf install buildah`" + `
  - Debian/Ubuntu: ` + "`sudo apt install buildah`" + `
- Or install podman: https://podman.io/docs/installation
- Pin your preferred engine in ~/.config/ocibake/config.cue:
~~~cue
engine: "buildah"
~~~`,
		extLinks: []HttpLink{"https://github.com/containers/buildah/blob/main/install.md"},
	}

	bakefileNotFoundIssue = &Issue{
		id: BakefileNotFoundId,
		mdMsg: `
# No bakefile found!

We searched for a recipe but couldn't find one.

## Search locations (in order of precedence):
1. The path given on the command line
2. ./bakefile.cue
3. ./bakefile.toml

## Things you can try:
- Create a starter recipe in the current directory:
~~~
$ ocibake init
~~~
- Or pass an explicit path:
~~~
$ ocibake build path/to/bakefile.cue
~~~`,
	}

	bakefileParseErrorIssue = &Issue{
		id: BakefileParseErrorId,
		mdMsg: `
# Failed to parse bakefile!

Your recipe contains syntax errors or invalid values.

## Common issues:
- Invalid CUE/TOML syntax
- Non-numeric user (must be uid:gid, e.g. "1000:1000")
- Relative destination paths (must start with "/")
- Unknown image format (must be "docker" or "oci")

## Example of a valid recipe:
~~~cue
base: "docker.io/fedora:35"
artifacts: [
	{source: "./target/release/simpleldap", dest: "/simpleldap"},
	{source: "./database.sqlite", dest: "/database.sqlite"},
]
entrypoint: ["/simpleldap"]
user: "1000:1000"
image: "simpleldap"
format: "docker"
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The tool configuration could not be read or validated.

## Things you can try:
- Show where the config is loaded from:
~~~
$ ocibake config path
~~~
- Check the file against the schema:
~~~cue
engine: "auto"  // "auto" | "buildah" | "podman"
cleanup_on_failure: true
pull: {attempts: 3, backoff: "2s"}
~~~
- Remove the file to fall back to defaults`,
	}

	issues = map[Id]*Issue{
		baseImageUnresolvedIssue.Id(): baseImageUnresolvedIssue,
		mountFailedIssue.Id():         mountFailedIssue,
		artifactMissingIssue.Id():     artifactMissingIssue,
		configureFailedIssue.Id():     configureFailedIssue,
		commitFailedIssue.Id():        commitFailedIssue,
		verifyFailedIssue.Id():        verifyFailedIssue,
		unmountFailedIssue.Id():       unmountFailedIssue,
		engineNotFoundIssue.Id():      engineNotFoundIssue,
		bakefileNotFoundIssue.Id():    bakefileNotFoundIssue,
		bakefileParseErrorIssue.Id():  bakefileParseErrorIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
	}
)

// Values returns all registered issues.
func Values() []*Issue {
	return maps.Values(issues)
}

// Get returns the issue registered under id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
