package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:          "dexter",
		Short:        "Inspect Dalvik executable containers",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.Int64Var(&g.offset, "offset", 0, "byte offset of the container within each input file")
	flags.CountVarP(&g.verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	flags.StringVar(&g.logPath, "log", "", "write logs to this file instead of stderr")
	flags.StringVar(&g.configPath, "config", "", "configuration file (default $XDG_CONFIG_HOME/dexter/config.toml)")
	flags.BoolVar(&g.hiddenAPI, "hidden-api", true, "merge hidden api flags onto class members")

	rootCmd.AddCommand(newDumpCmd(g))
	rootCmd.AddCommand(newHeaderCmd(g))
	rootCmd.AddCommand(newStringsCmd(g))
	rootCmd.AddCommand(newClassesCmd(g))
	rootCmd.AddCommand(newCodeCmd(g))
	rootCmd.AddCommand(newOffsetsCmd(g))
	rootCmd.AddCommand(newVerifyCmd(g))

	return rootCmd
}
