// SPDX-License-Identifier: MPL-2.0

package bakefile

// Defaults matching the original simpleldap packaging recipe. A bakefile that
// omits a field inherits the corresponding value.
const (
	// DefaultBase is the base image the working container starts from.
	DefaultBase ImageRef = "docker.io/fedora:35"
	// DefaultImage is the name the committed image is stored under.
	DefaultImage ImageRef = "simpleldap"
	// DefaultUser is the runtime user of the committed image.
	DefaultUser UserSpec = "1000:1000"
	// DefaultFormat is the manifest format of the committed image.
	DefaultFormat ImageFormat = FormatDocker
)

// DefaultArtifacts returns the two artifacts the original recipe embeds: the
// release binary and the SQLite database it serves.
func DefaultArtifacts() []Artifact {
	return []Artifact{
		{Source: "./target/release/simpleldap", Dest: "/simpleldap"},
		{Source: "./database.sqlite", Dest: "/database.sqlite"},
	}
}

// Default returns the recipe equivalent to the original hard-coded build.
func Default() *Bakefile {
	return &Bakefile{
		Base:       DefaultBase,
		Artifacts:  DefaultArtifacts(),
		Entrypoint: []string{"/simpleldap"},
		User:       DefaultUser,
		Image:      DefaultImage,
		Format:     DefaultFormat,
	}
}
