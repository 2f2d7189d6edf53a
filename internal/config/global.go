// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride redirects ConfigDir for tests, which need builds and
// config commands to read and write under a t.TempDir() instead of the
// user's real ~/.config/ocibake.
var configDirOverride string

// SetConfigDirOverride redirects ConfigDir to dir until Reset is called.
// Tests pair it with t.Cleanup(Reset); overriding the directory beats
// faking HOME because os.UserConfigDir does not follow the HOME env var
// on every platform.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset clears the config directory override.
func Reset() {
	configDirOverride = ""
}
