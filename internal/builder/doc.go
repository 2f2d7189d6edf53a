// SPDX-License-Identifier: MPL-2.0

// Package builder orchestrates baking artifacts into an OCI image.
//
// A build is a strictly linear sequence against a container.Engine: create a
// working container from the base image, mount its root filesystem, copy the
// recipe's artifacts in, set entrypoint and user, commit, and release the
// working container. The first failing step aborts the sequence; unmount and
// removal of the working container are guaranteed on every exit path unless
// the caller opts to keep it for inspection.
package builder
