// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
	"time"
)

func TestEnginePreference_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value EnginePreference
		want  bool
	}{
		{EngineAuto, true},
		{EngineBuildah, true},
		{EnginePodman, true},
		{"docker", false},
		{"", false},
		{"BUILDAH", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()
			valid, errs := tt.value.IsValid()
			if valid != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.value, valid, tt.want)
			}
			if !tt.want {
				if len(errs) != 1 {
					t.Fatalf("expected one error, got %d", len(errs))
				}
				if !errors.Is(errs[0], ErrInvalidEnginePreference) {
					t.Errorf("error should wrap ErrInvalidEnginePreference, got %v", errs[0])
				}
			}
		})
	}
}

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	for _, cs := range []ColorScheme{ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight} {
		if valid, _ := cs.IsValid(); !valid {
			t.Errorf("%q should be valid", cs)
		}
	}

	valid, errs := ColorScheme("solarized").IsValid()
	if valid {
		t.Error("unknown scheme should be invalid")
	}
	if !errors.Is(errs[0], ErrInvalidColorScheme) {
		t.Errorf("error should wrap ErrInvalidColorScheme, got %v", errs[0])
	}
}

func TestBackoff_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value Backoff
		want  bool
	}{
		{"", true},
		{"2s", true},
		{"500ms", true},
		{"1m30s", true},
		{"-1s", false},
		{"0s", false},
		{"fast", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()
			valid, errs := tt.value.IsValid()
			if valid != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.value, valid, tt.want)
			}
			if !tt.want && !errors.Is(errs[0], ErrInvalidBackoff) {
				t.Errorf("error should wrap ErrInvalidBackoff, got %v", errs[0])
			}
		})
	}
}

func TestBackoff_Duration(t *testing.T) {
	t.Parallel()

	def := 2 * time.Second
	if got := Backoff("").Duration(def); got != def {
		t.Errorf("empty backoff should use default, got %v", got)
	}
	if got := Backoff("500ms").Duration(def); got != 500*time.Millisecond {
		t.Errorf("Duration(500ms) = %v", got)
	}
	if got := Backoff("nonsense").Duration(def); got != def {
		t.Errorf("malformed backoff should fall back to default, got %v", got)
	}
}

func TestPullConfig_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  PullConfig
		want bool
	}{
		{"defaults", DefaultConfig().Pull, true},
		{"single attempt", PullConfig{Attempts: 1, Backoff: "1s"}, true},
		{"zero attempts", PullConfig{Attempts: 0, Backoff: "1s"}, false},
		{"too many attempts", PullConfig{Attempts: 50, Backoff: "1s"}, false},
		{"bad backoff", PullConfig{Attempts: 3, Backoff: "soon"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			valid, errs := tt.cfg.IsValid()
			if valid != tt.want {
				t.Errorf("IsValid() = %v, want %v (errs: %v)", valid, tt.want, errs)
			}
			if !tt.want && !errors.Is(errs[0], ErrInvalidPullConfig) {
				t.Errorf("error should wrap ErrInvalidPullConfig, got %v", errs[0])
			}
		})
	}
}

func TestConfig_IsValid_Aggregates(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Engine:           "docker",
		CleanupOnFailure: true,
		Pull:             PullConfig{Attempts: 0, Backoff: "bad"},
		UI:               UIConfig{ColorScheme: "sepia"},
	}

	valid, errs := cfg.IsValid()
	if valid {
		t.Fatal("config with three invalid fields should not validate")
	}
	if len(errs) != 1 {
		t.Fatalf("expected a single wrapping error, got %d", len(errs))
	}

	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) {
		t.Fatalf("expected *InvalidConfigError, got %T", errs[0])
	}
	if len(cfgErr.FieldErrors) != 3 {
		t.Errorf("expected 3 field errors, got %d: %v", len(cfgErr.FieldErrors), cfgErr.FieldErrors)
	}
	if !errors.Is(errs[0], ErrInvalidConfig) {
		t.Error("error should wrap ErrInvalidConfig")
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if valid, errs := cfg.IsValid(); !valid {
		t.Fatalf("default config should validate: %v", errs)
	}
	if cfg.Engine != EngineAuto {
		t.Errorf("default engine = %q, want auto", cfg.Engine)
	}
	if !cfg.CleanupOnFailure {
		t.Error("cleanup_on_failure should default to true")
	}
	if cfg.Pull.Attempts != 3 {
		t.Errorf("default pull attempts = %d, want 3", cfg.Pull.Attempts)
	}
	if cfg.Pull.Backoff.Duration(0) != 2*time.Second {
		t.Errorf("default backoff = %v, want 2s", cfg.Pull.Backoff.Duration(0))
	}
}
