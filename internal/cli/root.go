// Package cli defines the mirroir command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/infrastructure/config"
)

var (
	cfgFile   string
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "mirroir",
	Short:         "mirroir runs declarative UI scenarios against a mirrored device screen",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().String("mirror-url", "", "device mirror page URL (overrides config)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// mirrorURL resolves the flag override against the loaded config.
func mirrorURL() string {
	if v, _ := rootCmd.PersistentFlags().GetString("mirror-url"); v != "" {
		return v
	}
	return appConfig.Mirror.URL
}
