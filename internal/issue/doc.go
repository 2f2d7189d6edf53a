// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error reporting: the ActionableError
// builder for errors that carry an operation, a resource, and fix
// suggestions, and a registry of known failure classes with rendered
// markdown guidance.
package issue
