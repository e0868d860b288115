package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sofmeright/badgebranch/src/config"
	"github.com/sofmeright/badgebranch/src/version"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "badgebranch",
	Short: "Publish a shields.io endpoint badge on a git branch",
	Long: `badgebranch renders a shields.io endpoint badge descriptor (badges/<name>.json),
commits it to a dedicated branch, pushes it and prints the markdown that embeds it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it.
		if cmd.Name() == "version" {
			return nil
		}
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg, err = config.Load(wd, cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	RunE:          runBadge,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .badgebranch.yml, .badgebranch.yaml or .badgebranch.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.Version = version.String()
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
