// SPDX-License-Identifier: MPL-2.0

// Package bakefile defines the build recipe for ocibake: the base image, the
// artifacts to embed, the image metadata to set, and the name and format of
// the committed image.
//
// Recipes are loaded from bakefile.cue (validated against the embedded
// #Bakefile schema) or bakefile.toml. Every field has a documented default so
// an empty recipe reproduces the original simpleldap build.
package bakefile
