// SPDX-License-Identifier: MPL-2.0

package bakefile

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ocibake/pkg/cueutil"

	"github.com/pelletier/go-toml/v2"
)

//go:embed bakefile_schema.cue
var bakefileSchema string

// Parse reads and parses a recipe from the given path. The format is chosen
// by extension: .cue (schema-validated) or .toml.
func Parse(path string) (*Bakefile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bakefile at %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return ParseBytes(data, path)
	case ".toml":
		return ParseTOML(data, path)
	default:
		return nil, fmt.Errorf("unsupported bakefile format %q: use .cue or .toml", filepath.Ext(path))
	}
}

// ParseBytes parses CUE recipe content. Uses the 3-step CUE flow: compile
// schema, compile user data, validate and decode.
func ParseBytes(data []byte, path string) (*Bakefile, error) {
	result, err := cueutil.ParseAndDecodeString[Bakefile](
		bakefileSchema,
		data,
		"#Bakefile",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	bf := result.Value
	bf.FilePath = path

	if err := bf.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bf, nil
}

// ParseTOML parses TOML recipe content.
func ParseTOML(data []byte, path string) (*Bakefile, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return nil, err
	}

	var bf Bakefile
	if err := toml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	bf.FilePath = path

	if err := bf.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &bf, nil
}

// Discover looks for a recipe file in dir, preferring CUE over TOML.
// Returns the path, or an empty string when no recipe file exists.
func Discover(dir string) string {
	for _, name := range []string{"bakefile.cue", "bakefile.toml"} {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
