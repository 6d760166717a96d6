package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/inkwell/internal/cli"
	"github.com/example/inkwell/internal/version"
	"github.com/example/inkwell/internal/wire"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "inkwell",
		Short:   "Inkwell - inbox-to-thermal-printer mission pipeline",
		Version: version.String(),
		Long: `Inkwell watches an email inbox, classifies new messages with a language
model, and prints actionable ones as mission briefings on a thermal printer.
Personal messages come out as small tickets; everything else is ignored.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			wire.SetConfigPath(configPath)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.inkwell/config.yaml)")

	rootCmd.AddCommand(cli.MonitorCmd())
	rootCmd.AddCommand(cli.CheckCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.MissionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
