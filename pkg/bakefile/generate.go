// SPDX-License-Identifier: MPL-2.0

package bakefile

import (
	"fmt"
	"strings"
)

// Starter renders a commented example bakefile.cue for `ocibake init`,
// populated with the default recipe.
func Starter() string {
	def := Default()

	var b strings.Builder
	b.WriteString("// ocibake recipe. Run 'ocibake build' in this directory to bake the image.\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "// Image the working container starts from.\nbase: %q\n\n", def.Base)
	b.WriteString("// Prebuilt files to embed into the image.\nartifacts: [\n")
	for _, a := range def.Artifacts {
		fmt.Fprintf(&b, "\t{source: %q, dest: %q},\n", a.Source, a.Dest)
	}
	b.WriteString("]\n\n")
	quoted := make([]string, len(def.Entrypoint))
	for i, e := range def.Entrypoint {
		quoted[i] = fmt.Sprintf("%q", e)
	}
	fmt.Fprintf(&b, "// Command the image runs by default.\nentrypoint: [%s]\n\n", strings.Join(quoted, ", "))
	fmt.Fprintf(&b, "// Numeric uid:gid the image runs as.\nuser: %q\n\n", def.User)
	fmt.Fprintf(&b, "// Name of the committed image.\nimage: %q\n\n", def.Image)
	fmt.Fprintf(&b, "// Manifest format: \"docker\" or \"oci\".\nformat: %q\n", def.Format)
	return b.String()
}
