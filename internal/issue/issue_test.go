// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	ids := []Id{
		BaseImageUnresolvedId,
		MountFailedId,
		ArtifactMissingId,
		ConfigureFailedId,
		CommitFailedId,
		VerifyFailedId,
		UnmountFailedId,
		EngineNotFoundId,
		BakefileNotFoundId,
		BakefileParseErrorId,
		ConfigLoadFailedId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	if BaseImageUnresolvedId != 1 {
		t.Errorf("BaseImageUnresolvedId = %d, want 1", BaseImageUnresolvedId)
	}
}

func TestRegistry_CoversAllIds(t *testing.T) {
	for id := BaseImageUnresolvedId; id <= ConfigLoadFailedId; id++ {
		issue := Get(id)
		if issue == nil {
			t.Errorf("Get(%d) returned nil", id)
			continue
		}
		if issue.Id() != id {
			t.Errorf("issue registered under %d reports id %d", id, issue.Id())
		}
		if strings.TrimSpace(string(issue.MarkdownMsg())) == "" {
			t.Errorf("issue %d has empty guidance", id)
		}
	}
}

func TestGet_Unknown(t *testing.T) {
	if Get(Id(9999)) != nil {
		t.Error("unknown id should return nil")
	}
}

func TestValues(t *testing.T) {
	if len(Values()) != int(ConfigLoadFailedId) {
		t.Errorf("Values() returned %d issues, want %d", len(Values()), ConfigLoadFailedId)
	}
}

func TestIssue_Render(t *testing.T) {
	// Stub the renderer so the test does not depend on terminal detection.
	orig := render
	defer func() { render = orig }()
	render = func(in, _ string) (string, error) { return in, nil }

	out, err := Get(BaseImageUnresolvedId).Render("dark")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Base image") {
		t.Errorf("rendered output missing guidance:\n%s", out)
	}
	if !strings.Contains(out, "See also") {
		t.Errorf("rendered output missing links section:\n%s", out)
	}
}
