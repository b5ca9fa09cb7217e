package cli

import (
	"github.com/spf13/cobra"
)

// compile is a learning run that exists for discoverability; it is `run
// --learn` without replay.
var compileCmd = &cobra.Command{
	Use:   "compile <scenario.yaml> [more ...]",
	Short: "Run scenarios with full perception and write compiled sidecars",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		junitPath, _ := cmd.Flags().GetString("junit")
		return runScenarios(cmd.Context(), args, runOptions{
			learn:     true,
			junitPath: junitPath,
		})
	},
}

func init() {
	compileCmd.Flags().String("junit", "", "write a JUnit XML report to this path")
	rootCmd.AddCommand(compileCmd)
}
