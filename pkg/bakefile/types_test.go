// SPDX-License-Identifier: MPL-2.0

package bakefile

import (
	"errors"
	"testing"
)

func TestImageRefValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		ref     ImageRef
		wantErr bool
	}{
		{"full reference", "docker.io/fedora:35", false},
		{"bare name", "simpleldap", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"embedded space", "fedora 35", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.ref.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidImageRef) {
				t.Errorf("error should wrap ErrInvalidImageRef: %v", err)
			}
		})
	}
}

func TestUserSpecValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		user    UserSpec
		wantErr bool
	}{
		{"uid and gid", "1000:1000", false},
		{"uid only", "1000", false},
		{"zero value means inherit", "", false},
		{"root", "0:0", false},
		{"named user", "ldap:ldap", true},
		{"too many parts", "1:2:3", true},
		{"negative", "-1:0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.user.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.user, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidUserSpec) {
				t.Errorf("error should wrap ErrInvalidUserSpec: %v", err)
			}
		})
	}
}

func TestUserSpecParts(t *testing.T) {
	t.Parallel()
	u := UserSpec("1000:1001")
	if u.UID() != 1000 {
		t.Errorf("UID = %d, want 1000", u.UID())
	}
	gid, ok := u.GID()
	if !ok || gid != 1001 {
		t.Errorf("GID = %d, %v; want 1001, true", gid, ok)
	}

	bare := UserSpec("500")
	if _, ok := bare.GID(); ok {
		t.Error("bare uid should report no gid")
	}
}

func TestImageFormatValidate(t *testing.T) {
	t.Parallel()
	if err := FormatDocker.Validate(); err != nil {
		t.Errorf("docker should be valid: %v", err)
	}
	if err := FormatOCI.Validate(); err != nil {
		t.Errorf("oci should be valid: %v", err)
	}
	if err := ImageFormat("").Validate(); err != nil {
		t.Errorf("zero value should be valid: %v", err)
	}
	err := ImageFormat("qcow2").Validate()
	if err == nil {
		t.Fatal("qcow2 should be invalid")
	}
	if !errors.Is(err, ErrInvalidImageFormat) {
		t.Errorf("error should wrap ErrInvalidImageFormat: %v", err)
	}
	if ImageFormat("").OrDefault() != FormatDocker {
		t.Error("zero value should default to docker")
	}
}

func TestArtifactValidate(t *testing.T) {
	t.Parallel()
	valid := Artifact{Source: "./bin/app", Dest: "/app"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid artifact rejected: %v", err)
	}

	err := Artifact{Source: "", Dest: "relative"}.Validate()
	if err == nil {
		t.Fatal("expected error for empty source and relative dest")
	}
	if !errors.Is(err, ErrInvalidArtifact) {
		t.Errorf("error should wrap ErrInvalidArtifact: %v", err)
	}
	var artErr *InvalidArtifactError
	if !errors.As(err, &artErr) {
		t.Fatalf("expected InvalidArtifactError, got %T", err)
	}
	if len(artErr.FieldErrs) != 2 {
		t.Errorf("expected 2 field errors, got %d", len(artErr.FieldErrs))
	}

	if err := (Artifact{Source: "./a", Dest: "/"}).Validate(); err == nil {
		t.Error("bare / destination should be invalid")
	}
}

func TestArtifactFileMode(t *testing.T) {
	t.Parallel()
	a := Artifact{Source: "./a", Dest: "/a", Mode: "0755"}
	mode, err := a.FileMode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != 0o755 {
		t.Errorf("mode = %o, want 755", mode)
	}

	none := Artifact{Source: "./a", Dest: "/a"}
	mode, err = none.FileMode()
	if err != nil || mode != 0 {
		t.Errorf("empty mode should be (0, nil), got (%o, %v)", mode, err)
	}

	bad := Artifact{Source: "./a", Dest: "/a", Mode: "rwxr-xr-x"}
	if _, err := bad.FileMode(); !errors.Is(err, ErrInvalidFileMode) {
		t.Errorf("expected ErrInvalidFileMode, got %v", err)
	}
}

func TestParseArtifact(t *testing.T) {
	t.Parallel()
	a, err := ParseArtifact("./bin/app:/app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Source != "./bin/app" || a.Dest != "/app" || a.Mode != "" {
		t.Errorf("unexpected artifact: %+v", a)
	}

	a, err = ParseArtifact("./bin/app:/app:0755")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Mode != "0755" {
		t.Errorf("mode = %q, want 0755", a.Mode)
	}

	if _, err := ParseArtifact("justapath"); err == nil {
		t.Error("expected error for spec without separator")
	}
	if _, err := ParseArtifact("a:b:c:d"); err == nil {
		t.Error("expected error for too many separators")
	}
}

func TestBakefileValidate(t *testing.T) {
	t.Parallel()
	if err := Default().Validate(); err != nil {
		t.Fatalf("default recipe must be valid: %v", err)
	}

	empty := &Bakefile{}
	err := empty.Validate()
	if err == nil {
		t.Fatal("empty recipe should be invalid")
	}
	if !errors.Is(err, ErrInvalidBakefile) {
		t.Errorf("error should wrap ErrInvalidBakefile: %v", err)
	}

	// Field sentinel surfaces through the aggregate error.
	bad := Default()
	bad.User = "root"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidUserSpec) {
		t.Errorf("expected ErrInvalidUserSpec through aggregate, got %v", err)
	}
}
