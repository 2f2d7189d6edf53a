// SPDX-License-Identifier: MPL-2.0

package bakefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validCUE = `
base: "docker.io/fedora:35"
artifacts: [
	{source: "./target/release/simpleldap", dest: "/simpleldap"},
	{source: "./database.sqlite", dest: "/database.sqlite"},
]
entrypoint: ["/simpleldap"]
user: "1000:1000"
image: "simpleldap"
format: "docker"
`

const validTOML = `
base = "docker.io/fedora:35"
entrypoint = ["/simpleldap"]
user = "1000:1000"
image = "simpleldap"
format = "docker"

[[artifacts]]
source = "./target/release/simpleldap"
dest = "/simpleldap"

[[artifacts]]
source = "./database.sqlite"
dest = "/database.sqlite"
`

func TestParseBytes_Valid(t *testing.T) {
	t.Parallel()
	bf, err := ParseBytes([]byte(validCUE), "bakefile.cue")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bf.Base != "docker.io/fedora:35" {
		t.Errorf("unexpected base: %q", bf.Base)
	}
	if len(bf.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(bf.Artifacts))
	}
	if bf.Artifacts[0].Dest != "/simpleldap" {
		t.Errorf("unexpected dest: %q", bf.Artifacts[0].Dest)
	}
	if bf.User != "1000:1000" {
		t.Errorf("unexpected user: %q", bf.User)
	}
	if bf.Format != FormatDocker {
		t.Errorf("unexpected format: %q", bf.Format)
	}
	if bf.FilePath != "bakefile.cue" {
		t.Errorf("unexpected file path: %q", bf.FilePath)
	}
}

func TestParseBytes_SchemaRejectsBadUser(t *testing.T) {
	t.Parallel()
	bad := strings.Replace(validCUE, `user: "1000:1000"`, `user: "root:wheel"`, 1)
	if _, err := ParseBytes([]byte(bad), "bakefile.cue"); err == nil {
		t.Fatal("expected error for non-numeric user")
	}
}

func TestParseBytes_SchemaRejectsRelativeDest(t *testing.T) {
	t.Parallel()
	bad := strings.Replace(validCUE, `dest: "/simpleldap"`, `dest: "simpleldap"`, 1)
	if _, err := ParseBytes([]byte(bad), "bakefile.cue"); err == nil {
		t.Fatal("expected error for relative destination")
	}
}

func TestParseBytes_SchemaRejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	bad := strings.Replace(validCUE, `format: "docker"`, `format: "qcow2"`, 1)
	if _, err := ParseBytes([]byte(bad), "bakefile.cue"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseBytes_MissingArtifacts(t *testing.T) {
	t.Parallel()
	bad := `
base: "docker.io/fedora:35"
artifacts: []
entrypoint: ["/simpleldap"]
image: "simpleldap"
`
	if _, err := ParseBytes([]byte(bad), "bakefile.cue"); err == nil {
		t.Fatal("expected error for empty artifact list")
	}
}

func TestParseTOML_Valid(t *testing.T) {
	t.Parallel()
	bf, err := ParseTOML([]byte(validTOML), "bakefile.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bf.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(bf.Artifacts))
	}
	if bf.Artifacts[1].Source != "./database.sqlite" {
		t.Errorf("unexpected source: %q", bf.Artifacts[1].Source)
	}
}

func TestParseTOML_InvalidSyntax(t *testing.T) {
	t.Parallel()
	if _, err := ParseTOML([]byte("base = [unclosed"), "bakefile.toml"); err == nil {
		t.Fatal("expected error for broken TOML")
	}
}

func TestParse_DispatchesOnExtension(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cuePath := filepath.Join(dir, "bakefile.cue")
	if err := os.WriteFile(cuePath, []byte(validCUE), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(cuePath); err != nil {
		t.Errorf("cue parse failed: %v", err)
	}

	tomlPath := filepath.Join(dir, "bakefile.toml")
	if err := os.WriteFile(tomlPath, []byte(validTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(tomlPath); err != nil {
		t.Errorf("toml parse failed: %v", err)
	}

	yamlPath := filepath.Join(dir, "bakefile.yaml")
	if err := os.WriteFile(yamlPath, []byte("base: x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(yamlPath); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestParse_MissingFile(t *testing.T) {
	t.Parallel()
	if _, err := Parse(filepath.Join(t.TempDir(), "absent.cue")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	if got := Discover(dir); got != "" {
		t.Errorf("expected no discovery in empty dir, got %q", got)
	}

	tomlPath := filepath.Join(dir, "bakefile.toml")
	if err := os.WriteFile(tomlPath, []byte(validTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Discover(dir); got != tomlPath {
		t.Errorf("expected %q, got %q", tomlPath, got)
	}

	// CUE wins over TOML when both exist.
	cuePath := filepath.Join(dir, "bakefile.cue")
	if err := os.WriteFile(cuePath, []byte(validCUE), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Discover(dir); got != cuePath {
		t.Errorf("expected %q, got %q", cuePath, got)
	}
}

func TestStarter_ParsesAndMatchesDefaults(t *testing.T) {
	t.Parallel()
	bf, err := ParseBytes([]byte(Starter()), "bakefile.cue")
	if err != nil {
		t.Fatalf("starter bakefile must parse: %v", err)
	}

	def := Default()
	if bf.Base != def.Base || bf.Image != def.Image || bf.User != def.User || bf.Format != def.Format {
		t.Errorf("starter recipe diverges from defaults: %+v vs %+v", bf, def)
	}
	if len(bf.Artifacts) != len(def.Artifacts) {
		t.Fatalf("expected %d artifacts, got %d", len(def.Artifacts), len(bf.Artifacts))
	}
	for i := range bf.Artifacts {
		if bf.Artifacts[i] != def.Artifacts[i] {
			t.Errorf("artifact %d diverges: %v vs %v", i, bf.Artifacts[i], def.Artifacts[i])
		}
	}
}
