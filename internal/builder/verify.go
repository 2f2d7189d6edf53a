// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"ocibake/pkg/bakefile"
)

// imageMeta is the subset of image configuration the verify step checks.
type imageMeta struct {
	Entrypoint []string
	User       string
}

// verifyImage inspects the committed image and compares its entrypoint and
// user metadata against the recipe.
func (b *Builder) verifyImage(ctx context.Context, bf *bakefile.Bakefile) error {
	out, err := b.engine.InspectImage(ctx, bf.Image)
	if err != nil {
		return fmt.Errorf("failed to inspect committed image %s: %w", bf.Image, err)
	}

	meta, err := parseImageMeta([]byte(out))
	if err != nil {
		return fmt.Errorf("failed to parse inspect output for %s: %w", bf.Image, err)
	}

	if !slices.Equal(meta.Entrypoint, bf.Entrypoint) {
		return fmt.Errorf("image %s entrypoint is %v, recipe wants %v",
			bf.Image, meta.Entrypoint, bf.Entrypoint)
	}

	if bf.User != "" && meta.User != string(bf.User) {
		return fmt.Errorf("image %s user is %q, recipe wants %q",
			bf.Image, meta.User, bf.User)
	}

	return nil
}

// parseImageMeta extracts entrypoint/user from engine inspect output.
// The shape differs per engine: podman's image inspect prints a JSON array
// of objects with a Config section; buildah inspect prints a single object
// with OCIv1/Docker sections. Both are handled.
func parseImageMeta(data []byte) (*imageMeta, error) {
	// podman: [{"Config": {"Entrypoint": [...], "User": "..."}}]
	var list []inspectEntry
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) == 0 {
			return nil, fmt.Errorf("inspect output is an empty list")
		}
		return metaFromEntry(list[0])
	}

	// buildah: {"OCIv1": {"config": {...}}, "Docker": {"config": {...}}}
	var entry inspectEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("inspect output is not valid JSON: %w", err)
	}
	return metaFromEntry(entry)
}

type inspectConfig struct {
	Entrypoint []string `json:"Entrypoint"`
	User       string   `json:"User"`
}

type inspectEntry struct {
	Config *inspectConfig `json:"Config"`
	OCIv1  *struct {
		Config *inspectConfig `json:"config"`
	} `json:"OCIv1"`
	Docker *struct {
		Config *inspectConfig `json:"config"`
	} `json:"Docker"`
}

func metaFromEntry(entry inspectEntry) (*imageMeta, error) {
	var cfg *inspectConfig
	switch {
	case entry.Config != nil:
		cfg = entry.Config
	case entry.OCIv1 != nil && entry.OCIv1.Config != nil:
		cfg = entry.OCIv1.Config
	case entry.Docker != nil && entry.Docker.Config != nil:
		cfg = entry.Docker.Config
	default:
		return nil, fmt.Errorf("inspect output has no recognizable config section")
	}

	return &imageMeta{
		Entrypoint: cfg.Entrypoint,
		User:       cfg.User,
	}, nil
}
