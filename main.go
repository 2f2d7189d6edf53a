// SPDX-License-Identifier: MPL-2.0

// ocibake bakes prebuilt artifacts into OCI images using buildah or podman.
package main

import cmd "ocibake/cmd/ocibake"

func main() {
	cmd.Execute()
}
