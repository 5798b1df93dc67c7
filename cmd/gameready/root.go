package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath  string
	catalogPath string
	verbose     bool
	dryRun      bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "gameready",
		Short: "gameready prepares an Ubuntu machine for gaming",
		Long: `gameready detects the virtualization and graphics environment, reports which
gaming components are installed and offers to install, update or reinstall them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to a settings file")
	cmd.PersistentFlags().StringVar(&flags.catalogPath, "catalog", "", "Path to a component catalog (defaults to the built-in catalog)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "Print installer commands instead of running them")

	cmd.AddCommand(newDetectCmd(flags))
	cmd.AddCommand(newStatusCmd(flags))
	cmd.AddCommand(newApplyCmd(flags))
	cmd.AddCommand(newCatalogCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
