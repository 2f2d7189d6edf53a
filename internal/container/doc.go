// SPDX-License-Identifier: MPL-2.0

// Package container provides an abstraction layer over CLI container-image
// build engines (buildah/podman).
//
// The Engine interface covers the narrow set of operations the bake pipeline
// needs: create a working container from a base image, mount its root
// filesystem, copy artifacts into it, set image configuration, commit, and
// clean up. Both engines shell out to their respective binaries through an
// injectable exec function so tests can run without a container runtime.
package container
