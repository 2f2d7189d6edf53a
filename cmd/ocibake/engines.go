// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"ocibake/internal/container"

	"github.com/spf13/cobra"
)

// enginesCmd reports which container engines are usable on this host.
var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "Show available container engines",
	Long: `Show which container engines ocibake can use on this host.

ocibake drives buildah or podman through their CLIs. With engine "auto"
(the default) it prefers buildah and falls back to podman.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(TitleStyle.Render("Container Engines"))
		fmt.Println()

		for _, engineType := range []container.EngineType{
			container.EngineTypeBuildah,
			container.EngineTypePodman,
		} {
			engine, err := container.NewEngine(engineType)
			if err != nil || engine.Name() != string(engineType) {
				// NewEngine falls back to the other engine; a mismatched
				// name means the requested one is not usable.
				fmt.Printf("  %s %s %s\n",
					ErrorStyle.Render("✗"),
					CmdStyle.Render(string(engineType)),
					SubtitleStyle.Render("(not available)"))
				continue
			}

			version, verr := engine.Version(cmd.Context())
			if verr != nil {
				version = "unknown version"
			}
			fmt.Printf("  %s %s %s\n",
				SuccessStyle.Render("✓"),
				CmdStyle.Render(engine.Name()),
				SubtitleStyle.Render(version))
		}

		return nil
	},
}
